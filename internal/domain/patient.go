package domain

import "time"

type Patient struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	BirthDate string    `json:"birthDate"` // YYYY-MM-DD，只关心日期，不关心时刻
	Notes     string    `json:"notes"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
