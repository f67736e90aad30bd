package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mercato-dev/mercato/internal/cart"
)

// credentials is the login/register request body.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the response of POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsAdmin     bool   `json:"is_admin"`
}

// Account is the identity record returned by the auth endpoints.
type Account struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	Currency    string  `json:"currency"`
	Stock       int64   `json:"stock"`
	Slug        string  `json:"slug"`
}

// OrderItem is one checkout line on the wire.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderRef is the response of POST /orders/.
type OrderRef struct {
	ID int64 `json:"id"`
}

// OrderLine is one item of a past order.
type OrderLine struct {
	ProductID      int64   `json:"product_id"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	Title          *string `json:"title"`
}

// Order is one entry of the order history.
type Order struct {
	ID         int64       `json:"id"`
	UserEmail  string      `json:"user_email"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	CreatedAt  string      `json:"created_at"`
	Items      []OrderLine `json:"items"`
}

// CheckoutItems converts cart lines to their wire form.
func CheckoutItems(items []cart.Item) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return out
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   credentials{Email: email, Password: password},
	}, &result)
	return result, err
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) (Account, error) {
	var account Account
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   credentials{Email: email, Password: password},
	}, &account)
	return account, err
}

// Me returns the account behind the current bearer token.
func (c *Client) Me(ctx context.Context) (Account, error) {
	var account Account
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me"}, &account)
	return account, err
}

// DeleteAccount removes the account behind the current bearer token.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/auth/me"}, nil)
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]cart.Product, error) {
	var products []cart.Product
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/products/"}, &products)
	return products, err
}

// Product fetches a single catalog entry.
func (c *Client) Product(ctx context.Context, id int64) (cart.Product, error) {
	var product cart.Product
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/products/%d", id),
	}, &product)
	return product, err
}

// CreateProduct adds a catalog entry (admin).
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (cart.Product, error) {
	var product cart.Product
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/products/",
		Body:   in,
	}, &product)
	return product, err
}

// UpdateProduct replaces a catalog entry (admin).
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (cart.Product, error) {
	var product cart.Product
	err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/products/%d", id),
		Body:   in,
	}, &product)
	return product, err
}

// DeleteProduct removes a catalog entry (admin).
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/products/%d", id),
	}, nil)
}

type checkoutPayload struct {
	Items []OrderItem `json:"items"`
}

// ValidateCart checks items against current stock. The user email rides
// as an explicit caller header, mirroring how checkout has always
// identified the buyer; pass "" to fall back to the derived identity.
func (c *Client) ValidateCart(ctx context.Context, userEmail string, items []OrderItem) error {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/checkout/validate",
		Header: identityHeader(userEmail),
		Body:   checkoutPayload{Items: items},
	}, nil)
}

// CreateOrder places an order for the given items.
func (c *Client) CreateOrder(ctx context.Context, userEmail string, items []OrderItem) (OrderRef, error) {
	var ref OrderRef
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/orders/",
		Header: identityHeader(userEmail),
		Body:   checkoutPayload{Items: items},
	}, &ref)
	return ref, err
}

// MyOrders returns the order history, newest first.
func (c *Client) MyOrders(ctx context.Context, userEmail string) ([]Order, error) {
	var orders []Order
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/orders/my",
		Header: identityHeader(userEmail),
	}, &orders)
	return orders, err
}

func identityHeader(email string) http.Header {
	if email == "" {
		return nil
	}
	h := http.Header{}
	h.Set("X-User-Email", email)
	return h
}
