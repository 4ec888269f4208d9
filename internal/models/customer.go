package models

import "time"

type Customer struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Country          string    `json:"country"`
	RegistrationDate time.Time `json:"registration_date"`
}
