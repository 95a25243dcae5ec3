package gateway

import "errors"

var ErrGatewayNotSupported = errors.New("gateway is not supported")

type Registry struct {
	gateways map[int32]Gateway
	order    []int32
}

func NewRegistry(gateways ...Gateway) *Registry {
	items := make(map[int32]Gateway, len(gateways))
	order := make([]int32, 0, len(gateways))
	for _, g := range gateways {
		if _, ok := items[g.Code()]; !ok {
			order = append(order, g.Code())
		}
		items[g.Code()] = g
	}
	return &Registry{gateways: items, order: order}
}

func (r *Registry) Get(code int32) (Gateway, error) {
	g, ok := r.gateways[code]
	if !ok {
		return nil, ErrGatewayNotSupported
	}
	return g, nil
}

// CompatibleForTokenization returns gateways able to save a payment method
// for the company without a live charge, in registration order.
func (r *Registry) CompatibleForTokenization(companyID uint64) []Gateway {
	compatible := make([]Gateway, 0, len(r.order))
	for _, code := range r.order {
		g := r.gateways[code]
		if g.SupportsTokenization(companyID) {
			compatible = append(compatible, g)
		}
	}
	return compatible
}
