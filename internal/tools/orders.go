package tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

const (
	orderLimitDefault = 3
	orderLimitMax     = 10
)

type orderItem struct {
	Label      string  `json:"label"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

type orderSummary struct {
	OrderNumber string      `json:"orderNumber"`
	Date        string      `json:"date,omitempty"`
	Status      string      `json:"status,omitempty"`
	Total       float64     `json:"total"`
	Items       []orderItem `json:"items,omitempty"`
}

// ListOrdersTool lists the logged-in customer's orders.
type ListOrdersTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewListOrdersTool(deps Deps) *ListOrdersTool {
	return &ListOrdersTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "list_orders",
			ToolDescription: "List the logged-in customer's orders, newest first",
			ToolSchema: schemaWith(map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Results per page (default %d, max %d)", orderLimitDefault, orderLimitMax),
					"minimum":     1,
					"maximum":     orderLimitMax,
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, starting at 1",
					"minimum":     1,
				},
			}, "context_token"),
		},
		deps: deps,
	}
}

func (t *ListOrdersTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		pageArgs
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	limit, page := in.normalize(orderLimitDefault, orderLimitMax)

	criteria := store.Criteria{
		Page:           page,
		Limit:          limit,
		Sort:           []store.SortField{{Field: "orderDateTime", Order: store.SortDescending}},
		Associations:   map[string]store.Criteria{"lineItems": {}, "stateMachineState": {}},
		TotalCountMode: store.ExactTotalCount,
	}

	client := t.deps.client(in.credentialArgs)
	var result store.OrderList
	if err := client.Post(ctx, "order", criteria, &result); err != nil {
		if store.IsStatus(err, http.StatusForbidden) {
			return notLoggedIn("view your orders"), nil
		}
		return mcpserver.ErrorResult(fmt.Errorf("order listing failed: %w", err)), nil
	}

	if result.Orders.Total == 0 {
		return mcpserver.TextResult("You have no orders yet."), nil
	}

	payload := struct {
		Total       int            `json:"total"`
		Page        int            `json:"page"`
		Limit       int            `json:"limit"`
		HasNextPage bool           `json:"hasNextPage"`
		Orders      []orderSummary `json:"orders"`
	}{
		Total:       result.Orders.Total,
		Page:        page,
		Limit:       limit,
		HasNextPage: hasNextPage(result.Orders.Total, page, limit),
		Orders:      make([]orderSummary, 0, len(result.Orders.Elements)),
	}
	for _, o := range result.Orders.Elements {
		payload.Orders = append(payload.Orders, summarizeOrder(o))
	}
	return mcpserver.SuccessResult(payload), nil
}

func summarizeOrder(o store.Order) orderSummary {
	summary := orderSummary{
		OrderNumber: o.OrderNumber,
		Date:        o.OrderDateTime,
		Total:       o.AmountTotal,
		Items:       make([]orderItem, 0, len(o.LineItems)),
	}
	if o.StateMachineState != nil {
		summary.Status = pick(o.StateMachineState.Translated.Name, o.StateMachineState.Name)
	}
	for _, li := range o.LineItems {
		summary.Items = append(summary.Items, orderItem{
			Label:      li.Label,
			Quantity:   li.Quantity,
			TotalPrice: li.TotalPrice,
		})
	}
	return summary
}

// PlaceOrderTool turns the current cart into an order.
type PlaceOrderTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewPlaceOrderTool(deps Deps) *PlaceOrderTool {
	return &PlaceOrderTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "place_order",
			ToolDescription: "Place an order from the current cart of the logged-in customer",
			ToolSchema:      schemaWith(nil, "context_token"),
		},
		deps: deps,
	}
}

func (t *PlaceOrderTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}

	client := t.deps.client(in.credentialArgs)
	var order store.Order
	if err := client.Post(ctx, "checkout/order", nil, &order); err != nil {
		if store.IsStatus(err, http.StatusForbidden) {
			return notLoggedIn("place an order"), nil
		}
		return mcpserver.ErrorResult(fmt.Errorf("placing order failed: %w", err)), nil
	}

	symbol := t.deps.currencySymbol(ctx, client)
	return mcpserver.TextResult(fmt.Sprintf(
		"Order %s placed successfully. Total: %s.",
		order.OrderNumber, formatPrice(order.AmountTotal, symbol))), nil
}
