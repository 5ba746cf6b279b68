package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
)

// DefaultProductImage is used when a product is created without an image.
const DefaultProductImage = "assets/Home/Centrifugal Pumps.png"

// StockStatus is the availability label shown on the storefront.
type StockStatus string

const (
	StockInStock     StockStatus = "In Stock"
	StockLow         StockStatus = "Low Stock"
	StockOut         StockStatus = "Out of Stock"
	StockMadeToOrder StockStatus = "Made to Order"
)

var stockStatuses = []StockStatus{StockInStock, StockLow, StockOut, StockMadeToOrder}

// ParseStockStatus matches s case-insensitively against the known labels.
// An empty string is accepted and means "not specified".
func ParseStockStatus(s string) (StockStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, st := range stockStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stock status %q: %w", s, apperr.ErrValidation)
}

// TableData carries the performance matrix and the spec finder keys.
// Members it does not model are kept and written back.
type TableData struct {
	PipeSize         string    `json:"pipe_size,omitempty"`
	HPKW             string    `json:"hp_kw,omitempty"`
	HeadRowVals      []float64 `json:"head_row_vals,omitempty"`
	DischargeRowVals []float64 `json:"discharge_row_vals,omitempty"`

	extra fields
}

func (td *TableData) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*td = TableData{}
	f.text("pipe_size", &td.PipeSize)
	f.text("hp_kw", &td.HPKW)
	f.floats("head_row_vals", &td.HeadRowVals)
	f.floats("discharge_row_vals", &td.DischargeRowVals)
	td.extra = f.clone()
	return nil
}

func (td TableData) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(td.extra)
	w.text("pipe_size", td.PipeSize)
	w.text("hp_kw", td.HPKW)
	if len(td.HeadRowVals) > 0 {
		w.put("head_row_vals", td.HeadRowVals)
	}
	if len(td.DischargeRowVals) > 0 {
		w.put("discharge_row_vals", td.DischargeRowVals)
	}
	return w.finish()
}

// Validate checks that head and discharge values pair up.
func (td *TableData) Validate() error {
	if td == nil {
		return nil
	}
	if len(td.HeadRowVals) > 0 && len(td.DischargeRowVals) > 0 && len(td.HeadRowVals) != len(td.DischargeRowVals) {
		return fmt.Errorf("table_data: %d head values vs %d discharge values: %w",
			len(td.HeadRowVals), len(td.DischargeRowVals), apperr.ErrValidation)
	}
	return nil
}

// Product is one catalog entry. Loose scalars in stored products (a numeric
// price, say) are read as text, and members the catalog does not model
// survive updates.
type Product struct {
	ID        NumericID   `json:"id"`
	Name      string      `json:"name"`
	Series    string      `json:"series,omitempty"`
	Category  string      `json:"category,omitempty"`
	HP        string      `json:"hp,omitempty"`
	Price     string      `json:"price,omitempty"`
	Stock     StockStatus `json:"stock,omitempty"`
	Image     string      `json:"image,omitempty"`
	TableData *TableData  `json:"table_data,omitempty"`

	extra fields
}

// Extra returns a member kept from the stored product that the catalog does not model.
func (p Product) Extra(key string) (json.RawMessage, bool) {
	v, ok := p.extra[key]
	return v, ok
}

func (p *Product) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*p = Product{}
	if err := f.require("id", &p.ID); err != nil {
		return fmt.Errorf("product: %w", err)
	}
	f.text("name", &p.Name)
	f.text("series", &p.Series)
	f.text("category", &p.Category)
	f.text("hp", &p.HP)
	f.text("price", &p.Price)
	var stock string
	f.text("stock", &stock)
	p.Stock = StockStatus(stock)
	f.text("image", &p.Image)
	if raw, ok := f["table_data"]; ok {
		if isNull(raw) {
			delete(f, "table_data")
		} else if td := new(TableData); f.decode("table_data", td) {
			p.TableData = td
		}
	}
	p.extra = f.clone()
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(p.extra)
	w.put("id", p.ID)
	w.put("name", p.Name)
	w.text("series", p.Series)
	w.text("category", p.Category)
	w.text("hp", p.HP)
	w.text("price", p.Price)
	w.text("stock", string(p.Stock))
	w.text("image", p.Image)
	if p.TableData != nil {
		w.put("table_data", p.TableData)
	}
	return w.finish()
}

// ProductInput is a partial product. Nil fields are left untouched on update.
type ProductInput struct {
	Name      *string    `json:"name"`
	Series    *string    `json:"series"`
	Category  *string    `json:"category"`
	HP        *string    `json:"hp"`
	Price     *string    `json:"price"`
	Stock     *string    `json:"stock"`
	Image     *string    `json:"image"`
	TableData *TableData `json:"table_data"`
}

// Apply merges the supplied fields into p. An empty image never replaces an existing one.
func (in ProductInput) Apply(p *Product) error {
	if in.Stock != nil {
		st, err := ParseStockStatus(*in.Stock)
		if err != nil {
			return err
		}
		p.Stock = st
	}
	if err := in.TableData.Validate(); err != nil {
		return err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Series != nil {
		p.Series = strings.TrimSpace(*in.Series)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.HP != nil {
		p.HP = *in.HP
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Image != nil && strings.TrimSpace(*in.Image) != "" {
		p.Image = *in.Image
	}
	if in.TableData != nil {
		p.TableData = in.TableData
	}
	return nil
}
