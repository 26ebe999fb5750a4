package services

import (
	"storefront/internal/domain"
	"storefront/internal/repos"
)

type AddressService struct {
	Customers *repos.CustomerRepo
}

func NewAddressService(c *repos.CustomerRepo) *AddressService { return &AddressService{Customers: c} }

func (s *AddressService) Create(c domain.Customer) (int64, error) {
	return s.Customers.Create(c)
}

func (s *AddressService) List(userID int64) ([]domain.Customer, error) {
	return s.Customers.ListByUser(userID)
}

// ClearAll deletes every address profile of every account. Orders keep their
// rows with the address reference cleared.
func (s *AddressService) ClearAll() (int64, error) {
	return s.Customers.DeleteAll()
}
