package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

type lineItemRequest struct {
	Type         string `json:"type"`
	ReferencedID string `json:"referencedId"`
	Quantity     int    `json:"quantity"`
}

type addLineItemsRequest struct {
	Items []lineItemRequest `json:"items"`
}

type cartItem struct {
	Label      string  `json:"label"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice,omitempty"`
	TotalPrice float64 `json:"totalPrice,omitempty"`
}

type cartPayload struct {
	Token          string     `json:"token,omitempty"`
	Items          []cartItem `json:"items"`
	Total          float64    `json:"total"`
	TotalFormatted string     `json:"totalFormatted,omitempty"`
}

func (d Deps) reshapeCart(ctx context.Context, client *store.Client, cart store.Cart) cartPayload {
	payload := cartPayload{
		Token: cart.Token,
		Items: make([]cartItem, 0, len(cart.LineItems)),
	}
	for _, li := range cart.LineItems {
		item := cartItem{Label: li.Label, Quantity: li.Quantity}
		if li.Price != nil {
			item.UnitPrice = li.Price.UnitPrice
			item.TotalPrice = li.Price.TotalPrice
		}
		payload.Items = append(payload.Items, item)
	}
	if cart.Price != nil {
		payload.Total = cart.Price.TotalPrice
		if symbol := d.currencySymbol(ctx, client); symbol != "" {
			payload.TotalFormatted = formatPrice(cart.Price.TotalPrice, symbol)
		}
	}
	return payload
}

// GetCartTool shows the current cart for the caller's context token.
type GetCartTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewGetCartTool(deps Deps) *GetCartTool {
	return &GetCartTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "get_cart",
			ToolDescription: "Show the shopping cart belonging to the given context token",
			ToolSchema:      schemaWith(nil, "context_token"),
		},
		deps: deps,
	}
}

func (t *GetCartTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}

	client := t.deps.client(in.credentialArgs)
	var cart store.Cart
	if err := client.Get(ctx, "checkout/cart", &cart); err != nil {
		if store.IsStatus(err, http.StatusForbidden) {
			return notLoggedIn("view your cart"), nil
		}
		return mcpserver.ErrorResult(fmt.Errorf("cart fetch failed: %w", err)), nil
	}

	if len(cart.LineItems) == 0 {
		return mcpserver.TextResult("Your cart is empty."), nil
	}
	return mcpserver.SuccessResult(t.deps.reshapeCart(ctx, client, cart)), nil
}

// AddToCartTool puts a product into the cart.
type AddToCartTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewAddToCartTool(deps Deps) *AddToCartTool {
	return &AddToCartTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "add_to_cart",
			ToolDescription: "Add a product (by product number or UUID) to the cart",
			ToolSchema: schemaWith(map[string]any{
				"product_id": map[string]any{
					"type":        "string",
					"description": "Product UUID or product number (SKU)",
				},
				"quantity": map[string]any{
					"type":        "integer",
					"description": "Quantity to add (default 1)",
					"minimum":     1,
				},
			}, "product_id", "context_token"),
		},
		deps: deps,
	}
}

func (t *AddToCartTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	if in.ProductID == "" {
		return mcpserver.ErrorResult(errors.New("product_id is required")), nil
	}
	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	client := t.deps.client(in.credentialArgs)
	id, err := client.ResolveProductID(ctx, in.ProductID)
	if errors.Is(err, store.ErrProductNotFound) {
		return mcpserver.TextResult(fmt.Sprintf("Product %q not found.", in.ProductID)), nil
	}

	body := addLineItemsRequest{
		Items: []lineItemRequest{{Type: "product", ReferencedID: id, Quantity: quantity}},
	}

	var cart store.Cart
	if err := client.Post(ctx, "checkout/cart/line-item", body, &cart); err != nil {
		if store.IsStatus(err, http.StatusForbidden) {
			return notLoggedIn("add items to your cart"), nil
		}
		return mcpserver.ErrorResult(fmt.Errorf("adding to cart failed: %w", err)), nil
	}

	return mcpserver.SuccessResult(t.deps.reshapeCart(ctx, client, cart)), nil
}
