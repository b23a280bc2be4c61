package model

import (
	"github.com/credisys/credit-approval/internal/domain"
)

func CustomerFromEntity(data *domain.Customer) Customer {
	return Customer{
		ID:            data.ID,
		FirstName:     data.FirstName,
		LastName:      data.LastName,
		Age:           data.Age,
		PhoneNumber:   data.PhoneNumber,
		MonthlySalary: data.MonthlySalary,
		ApprovedLimit: data.ApprovedLimit,
	}
}

func CustomerToEntity(data Customer) *domain.Customer {
	return &domain.Customer{
		ID:            data.ID,
		FirstName:     data.FirstName,
		LastName:      data.LastName,
		Age:           data.Age,
		PhoneNumber:   data.PhoneNumber,
		MonthlySalary: data.MonthlySalary,
		ApprovedLimit: data.ApprovedLimit,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func CustomersToEntity(data []Customer) []domain.Customer {
	responses := make([]domain.Customer, len(data))
	for i, c := range data {
		responses[i] = *CustomerToEntity(c)
	}

	return responses
}
