package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coldstore-backend/internal/models"
	"coldstore-backend/internal/repositories"
	"coldstore-backend/internal/timeutil"
)

// ErrExpenseNotFound is returned when an expense does not exist.
var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseService records operating costs. Categories come from reference
// data so the books stay consistent.
type ExpenseService struct {
	expenses *repositories.ExpenseRepository
	refdata  ReferenceDataProvider
}

func NewExpenseService(expenses *repositories.ExpenseRepository, refdata ReferenceDataProvider) *ExpenseService {
	return &ExpenseService{expenses: expenses, refdata: refdata}
}

func (s *ExpenseService) Create(ctx context.Context, req *models.CreateExpenseRequest, userID int) (*models.Expense, error) {
	if err := s.validate(ctx, req.Category, req.Amount); err != nil {
		return nil, err
	}
	date := timeutil.Now()
	if req.ExpenseDate != "" {
		var err error
		date, err = timeutil.ParseDate(req.ExpenseDate)
		if err != nil {
			return nil, &models.ValidationError{Field: "expense_date", Message: "must be YYYY-MM-DD"}
		}
	}
	e := &models.Expense{
		Category:        req.Category,
		Amount:          req.Amount,
		ExpenseDate:     date,
		Description:     req.Description,
		CreatedByUserID: userID,
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExpenseService) validate(ctx context.Context, category string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &models.ValidationError{Field: "amount", Message: "must be positive"}
	}
	ref, err := s.refdata.ReferenceData(ctx)
	if err != nil {
		return fmt.Errorf("loading reference data: %w", err)
	}
	if !ref.HasExpenseCategory(category) {
		return &models.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id int) (*models.Expense, error) {
	e, err := s.expenses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context, from, to *time.Time) ([]models.Expense, error) {
	return s.expenses.ListBetween(ctx, from, to)
}

func (s *ExpenseService) Update(ctx context.Context, id int, req *models.UpdateExpenseRequest) (*models.Expense, error) {
	e, err := s.expenses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	if err := s.validate(ctx, req.Category, req.Amount); err != nil {
		return nil, err
	}
	if req.ExpenseDate != "" {
		date, err := timeutil.ParseDate(req.ExpenseDate)
		if err != nil {
			return nil, &models.ValidationError{Field: "expense_date", Message: "must be YYYY-MM-DD"}
		}
		e.ExpenseDate = date
	}
	e.Category = req.Category
	e.Amount = req.Amount
	e.Description = req.Description
	if err := s.expenses.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int) error {
	e, err := s.expenses.Get(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrExpenseNotFound
	}
	return s.expenses.Delete(ctx, id)
}
