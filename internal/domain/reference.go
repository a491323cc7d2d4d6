package domain

// ReferenceRecord is one provider's view of an instrument. Nil pointer fields
// mean the provider did not report the value, which is distinct from zero.
type ReferenceRecord struct {
	Symbol    string   `json:"symbol"` // upper-cased
	Name      string   `json:"name"`
	FDV       *float64 `json:"fdv"`
	MarketCap *float64 `json:"market_cap"`
	Change24h *float64 `json:"price_change_24h"`
	Change30d *float64 `json:"price_change_30d"`
}

// Clone returns a deep copy so merge steps never alias a source record.
func (r *ReferenceRecord) Clone() *ReferenceRecord {
	c := &ReferenceRecord{Symbol: r.Symbol, Name: r.Name}
	c.FDV = cloneFloat(r.FDV)
	c.MarketCap = cloneFloat(r.MarketCap)
	c.Change24h = cloneFloat(r.Change24h)
	c.Change30d = cloneFloat(r.Change30d)
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float64 is a convenience for building nullable fields in tests and adapters.
func Float64(v float64) *float64 {
	return &v
}
