package services

import (
	"context"
	"errors"
	"fmt"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/repositories"
)

// ErrCustomerNotFound is returned when a customer does not exist.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerService manages the customer register.
type CustomerService struct {
	customers *repositories.CustomerRepository
	ledger    LedgerStore
}

func NewCustomerService(customers *repositories.CustomerRepository, ledger LedgerStore) *CustomerService {
	return &CustomerService{customers: customers, ledger: ledger}
}

func (s *CustomerService) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "is required"}
	}
	if req.Phone != "" {
		existing, err := s.customers.GetByPhone(ctx, req.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &models.ValidationError{Field: "phone", Message: fmt.Sprintf("already used by customer %q", existing.Name)}
		}
	}
	c := &models.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Village: req.Village,
		Address: req.Address,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the customer with the live ledger balance attached.
func (s *CustomerService) Get(ctx context.Context, id int) (*models.CustomerWithBalance, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	balance, err := s.ledger.GetBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CustomerWithBalance{Customer: *c, Balance: balance}, nil
}

func (s *CustomerService) List(ctx context.Context, search string) ([]*models.Customer, error) {
	return s.customers.List(ctx, search)
}

func (s *CustomerService) Update(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	if req.Name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "is required"}
	}
	c.Name = req.Name
	c.Phone = req.Phone
	c.Village = req.Village
	c.Address = req.Address
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a customer. Refused while the account still carries a
// non-zero balance: settle first, then delete.
func (s *CustomerService) Delete(ctx context.Context, id int) error {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCustomerNotFound
	}
	balance, err := s.ledger.GetBalance(ctx, id)
	if err != nil {
		return err
	}
	if !balance.IsZero() {
		return &models.ValidationError{Field: "id", Message: "customer has an outstanding balance"}
	}
	return s.customers.Delete(ctx, id)
}
