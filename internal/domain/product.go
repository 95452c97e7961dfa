package domain

import "time"

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID           int64
	Name         string
	Price        int64
	CategoryID   *int64
	CategoryName string
	IsActive     bool
	CreatedAt    time.Time
}
