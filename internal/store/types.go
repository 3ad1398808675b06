package store

// Typed views of the Store API response shapes. The upstream object graph
// is far larger; only the fields the tool handlers reshape are declared,
// one record family per endpoint. Pointer fields mark data the upstream
// regularly omits (variants in particular inherit most of it from their
// parent product).

// SearchResult is the generic wrapper around Store API listing responses.
type SearchResult[T any] struct {
	Total    int `json:"total"`
	Elements []T `json:"elements"`
}

// Translated carries language-resolved fields. It is preferred over the
// raw fields whenever present.
type Translated struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID             string            `json:"id"`
	ProductNumber  string            `json:"productNumber"`
	ParentID       string            `json:"parentId"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Translated     Translated        `json:"translated"`
	Available      bool              `json:"available"`
	AvailableStock int               `json:"availableStock"`
	RatingAverage  *float64          `json:"ratingAverage"`
	CalculatedPrice *CalculatedPrice `json:"calculatedPrice"`
	Cover          *ProductMedia     `json:"cover"`
	Media          []ProductMedia    `json:"media"`
	Options        []PropertyOption  `json:"options"`
	Manufacturer   *Manufacturer     `json:"manufacturer"`
	Categories     []Category        `json:"categories"`
}

// DisplayName resolves the product's own name, preferring the translated
// form. Empty means the name must be inherited from the parent product.
func (p Product) DisplayName() string {
	if p.Translated.Name != "" {
		return p.Translated.Name
	}
	return p.Name
}

type CalculatedPrice struct {
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Quantity   int     `json:"quantity"`
}

type ProductMedia struct {
	Media *Media `json:"media"`
}

type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type PropertyOption struct {
	Name       string         `json:"name"`
	Translated Translated     `json:"translated"`
	Group      *PropertyGroup `json:"group"`
}

type PropertyGroup struct {
	Name       string     `json:"name"`
	Translated Translated `json:"translated"`
}

type Manufacturer struct {
	Name       string     `json:"name"`
	Translated Translated `json:"translated"`
}

type Category struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Translated Translated `json:"translated"`
	Active     bool       `json:"active"`
	Level      int        `json:"level"`
	Breadcrumb []string   `json:"breadcrumb"`
}

func (c Category) DisplayName() string {
	if c.Translated.Name != "" {
		return c.Translated.Name
	}
	return c.Name
}

type Review struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Points       float64 `json:"points"`
	ExternalUser string  `json:"externalUser"`
	CreatedAt    string  `json:"createdAt"`
}

type Order struct {
	ID               string           `json:"id"`
	OrderNumber      string           `json:"orderNumber"`
	OrderDateTime    string           `json:"orderDateTime"`
	AmountTotal      float64          `json:"amountTotal"`
	StateMachineState *StateMachineState `json:"stateMachineState"`
	LineItems        []OrderLineItem  `json:"lineItems"`
}

type StateMachineState struct {
	Name       string     `json:"name"`
	Translated Translated `json:"translated"`
}

type OrderLineItem struct {
	Label      string  `json:"label"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

// OrderList is the response envelope of the order route, which wraps its
// search result in an "orders" key.
type OrderList struct {
	Orders SearchResult[Order] `json:"orders"`
}

type Cart struct {
	Token     string         `json:"token"`
	Price     *CartPrice     `json:"price"`
	LineItems []CartLineItem `json:"lineItems"`
}

type CartPrice struct {
	NetPrice      float64 `json:"netPrice"`
	TotalPrice    float64 `json:"totalPrice"`
	PositionPrice float64 `json:"positionPrice"`
}

type CartLineItem struct {
	ID           string           `json:"id"`
	ReferencedID string           `json:"referencedId"`
	Label        string           `json:"label"`
	Quantity     int              `json:"quantity"`
	Price        *CalculatedPrice `json:"price"`
}

type ShippingMethod struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Translated   Translated    `json:"translated"`
	Description  string        `json:"description"`
	DeliveryTime *DeliveryTime `json:"deliveryTime"`
}

type DeliveryTime struct {
	Name       string     `json:"name"`
	Translated Translated `json:"translated"`
}

type PaymentMethod struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Translated  Translated `json:"translated"`
	Description string     `json:"description"`
}

// SalesChannelContext is the slice of the context endpoint used for
// currency formatting.
type SalesChannelContext struct {
	Currency *Currency `json:"currency"`
}

type Currency struct {
	ISOCode string `json:"isoCode"`
	Symbol  string `json:"symbol"`
}
