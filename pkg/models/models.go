// Package models holds the rows served by the table data API. JSON tags are
// the column names; gorm tags drive schema migration on the MySQL backend.
package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Credential{}, &Customer{}, &Cooker{},
		&MenuItem{}, &Order{}, &OrderItem{}, &Delivery{},
		&Payment{}, &Review{}, &Report{},
	}
}
