package tools

import (
	"context"
	"fmt"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

type methodSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DeliveryTime string `json:"deliveryTime,omitempty"`
}

// ShippingMethodsTool lists the shipping methods available to the caller's
// sales channel.
type ShippingMethodsTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewShippingMethodsTool(deps Deps) *ShippingMethodsTool {
	return &ShippingMethodsTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "list_shipping_methods",
			ToolDescription: "List the shipping methods available in the shop",
			ToolSchema:      schemaWith(nil),
		},
		deps: deps,
	}
}

func (t *ShippingMethodsTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}

	client := t.deps.client(in.credentialArgs)
	var result store.SearchResult[store.ShippingMethod]
	if err := client.Get(ctx, "shipping-method?onlyAvailable=true", &result); err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("shipping method listing failed: %w", err)), nil
	}

	if len(result.Elements) == 0 {
		return mcpserver.TextResult("No shipping methods available."), nil
	}

	methods := make([]methodSummary, 0, len(result.Elements))
	for _, m := range result.Elements {
		summary := methodSummary{
			ID:          m.ID,
			Name:        pick(m.Translated.Name, m.Name),
			Description: stripHTML(pick(m.Translated.Description, m.Description)),
		}
		if m.DeliveryTime != nil {
			summary.DeliveryTime = pick(m.DeliveryTime.Translated.Name, m.DeliveryTime.Name)
		}
		methods = append(methods, summary)
	}
	return mcpserver.SuccessResult(map[string]any{"shippingMethods": methods}), nil
}

// PaymentMethodsTool lists the payment methods available to the caller's
// sales channel.
type PaymentMethodsTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewPaymentMethodsTool(deps Deps) *PaymentMethodsTool {
	return &PaymentMethodsTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "list_payment_methods",
			ToolDescription: "List the payment methods available in the shop",
			ToolSchema:      schemaWith(nil),
		},
		deps: deps,
	}
}

func (t *PaymentMethodsTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}

	client := t.deps.client(in.credentialArgs)
	var result store.SearchResult[store.PaymentMethod]
	if err := client.Get(ctx, "payment-method?onlyAvailable=true", &result); err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("payment method listing failed: %w", err)), nil
	}

	if len(result.Elements) == 0 {
		return mcpserver.TextResult("No payment methods available."), nil
	}

	methods := make([]methodSummary, 0, len(result.Elements))
	for _, m := range result.Elements {
		methods = append(methods, methodSummary{
			ID:          m.ID,
			Name:        pick(m.Translated.Name, m.Name),
			Description: stripHTML(pick(m.Translated.Description, m.Description)),
		})
	}
	return mcpserver.SuccessResult(map[string]any{"paymentMethods": methods}), nil
}
