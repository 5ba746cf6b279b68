package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/gorilla/sessions"
)

// CartCookie names the visitor cart cookie.
const CartCookie = "varshini_cart"

// CartMaxAge is how long a visitor's cart survives, in seconds.
const CartMaxAge = 30 * 24 * 60 * 60

// CartItem is the product summary kept in a cart.
type CartItem struct {
	ID     models.NumericID `json:"id"`
	Name   string           `json:"name"`
	Series string           `json:"series,omitempty"`
	Image  string           `json:"image,omitempty"`
}

func ItemFromProduct(p models.Product) CartItem {
	return CartItem{ID: p.ID, Name: p.Name, Series: p.Series, Image: p.Image}
}

// Cart is an ordered set of distinct products.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) Contains(id models.NumericID) bool {
	for _, it := range c.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Add appends item unless it is already present.
func (c *Cart) Add(item CartItem) error {
	if c.Contains(item.ID) {
		return fmt.Errorf("product %d: %w", item.ID, apperr.ErrAlreadyInCart)
	}
	c.Items = append(c.Items, item)
	return nil
}

// Remove drops the item with id. Removing an absent item is not an error.
func (c *Cart) Remove(id models.NumericID) {
	for i, it := range c.Items {
		if it.ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// CartStore keeps a visitor's cart in a signed cookie.
type CartStore struct {
	store sessions.Store
}

func NewCartStore(store sessions.Store) *CartStore {
	return &CartStore{store: store}
}

// NewCookieStore builds the signed cookie store for carts. It is separate
// from the admin session store so each keeps its own lifetime.
func NewCookieStore(key []byte, secure bool, domain string) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.MaxAge(CartMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	if domain != "" {
		store.Options.Domain = domain
	}
	return store
}

// Get returns the cart carried by r; an absent or unreadable cookie is an empty cart.
func (s *CartStore) Get(r *http.Request) *Cart {
	cart := &Cart{Items: []CartItem{}}
	session, err := s.store.Get(r, CartCookie)
	if err != nil {
		return cart
	}
	raw, _ := session.Values["items"].(string)
	if raw == "" {
		return cart
	}
	if err := json.Unmarshal([]byte(raw), &cart.Items); err != nil || cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return cart
}

// Save writes cart back to the cookie.
func (s *CartStore) Save(w http.ResponseWriter, r *http.Request, cart *Cart) error {
	session, _ := s.store.Get(r, CartCookie)
	b, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}
	session.Values["items"] = string(b)
	return session.Save(r, w)
}
