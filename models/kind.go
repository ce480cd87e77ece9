package models

// Kind entity kinds reachable through the record gateway; the value is the table name.
type Kind string

const (
	KindIncome           Kind = "income"
	KindOutgoing         Kind = "outgoing"
	KindPaymentProviders Kind = "payment_providers"
)

// GetKinds returns the gateway whitelist
func GetKinds() []Kind {
	return []Kind{KindIncome, KindOutgoing, KindPaymentProviders}
}

// ParseKind maps a caller supplied name onto the whitelist.
func ParseKind(name string) (Kind, error) {
	for _, k := range GetKinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", ErrInvalidKind
}

// Table is the backing table name.
func (k Kind) Table() string {
	return string(k)
}

// Columns returns the writable columns of the kind.
func (k Kind) Columns() []Column {
	switch k {
	case KindIncome:
		return transactionColumns
	case KindOutgoing:
		return outgoingColumns
	case KindPaymentProviders:
		return providerColumns
	}
	return nil
}

// Column finds a writable column by name.
func (k Kind) Column(name string) (Column, bool) {
	for _, c := range k.Columns() {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
