package payments

import (
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// MethodPolicy controls who may pay with a method and how settlement runs.
// CollectOnly methods never touch the gateway; funds are verified manually.
type MethodPolicy struct {
	Enabled     bool
	Customer    bool
	Partner     bool
	Admin       bool
	CollectOnly bool
}

// Policy maps payment methods to their capability flags.
type Policy map[enums.PaymentMethod]MethodPolicy

// DefaultPolicy reflects the marketplace defaults: cards capture through the
// gateway, wallets settle instantly, bank transfers and crypto wait for an
// admin to confirm receipt.
func DefaultPolicy() Policy {
	return Policy{
		enums.PaymentMethodCard: {
			Enabled:  true,
			Customer: true,
			Admin:    true,
		},
		enums.PaymentMethodWallet: {
			Enabled:  true,
			Customer: true,
		},
		enums.PaymentMethodBankTransfer: {
			Enabled:     true,
			Customer:    true,
			Partner:     true,
			Admin:       true,
			CollectOnly: true,
		},
		enums.PaymentMethodCrypto: {
			Enabled:     true,
			Customer:    true,
			CollectOnly: true,
		},
	}
}

// Allows reports whether the role may pay with the method.
func (p Policy) Allows(method enums.PaymentMethod, role enums.ActorRole) bool {
	mp, ok := p[method]
	if !ok || !mp.Enabled {
		return false
	}
	switch role {
	case enums.ActorRoleCustomer:
		return mp.Customer
	case enums.ActorRolePartner:
		return mp.Partner
	case enums.ActorRoleAdmin:
		return mp.Admin
	default:
		return false
	}
}

// CollectOnly reports whether the method settles through manual verification.
func (p Policy) CollectOnly(method enums.PaymentMethod) bool {
	mp, ok := p[method]
	return ok && mp.CollectOnly
}

// MethodsFor lists the enabled methods available to the role, in the
// enum's declaration order.
func (p Policy) MethodsFor(role enums.ActorRole) []enums.PaymentMethod {
	ordered := []enums.PaymentMethod{
		enums.PaymentMethodCard,
		enums.PaymentMethodWallet,
		enums.PaymentMethodBankTransfer,
		enums.PaymentMethodCrypto,
	}
	var methods []enums.PaymentMethod
	for _, method := range ordered {
		if p.Allows(method, role) {
			methods = append(methods, method)
		}
	}
	return methods
}
