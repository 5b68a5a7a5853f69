package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
)

type PaymentRepository struct {
	mu      sync.Mutex
	nextID  int
	records map[string]models.Payment
	order   []string
}

func NewPaymentRepository(seed ...models.Payment) *PaymentRepository {
	repo := &PaymentRepository{records: make(map[string]models.Payment)}
	for _, payment := range seed {
		repo.Put(payment)
	}
	return repo
}

// Put stores payment as is, assigning an id when missing.
func (r *PaymentRepository) Put(payment models.Payment) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID == "" {
		r.nextID++
		payment.ID = fmt.Sprintf("pay-%d", r.nextID)
	}
	if _, exists := r.records[payment.ID]; !exists {
		r.order = append(r.order, payment.ID)
	}
	r.records[payment.ID] = clonePayment(payment)
	return payment.ID
}

func (r *PaymentRepository) Get(paymentID string) *models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.records[paymentID]
	if !ok {
		return nil
	}
	clone := clonePayment(payment)
	return &clone
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.PayPalOrderID == payment.PayPalOrderID {
			return "", fmt.Errorf("duplicate paypalOrderId %s", payment.PayPalOrderID)
		}
	}
	r.nextID++
	id := fmt.Sprintf("pay-%d", r.nextID)
	stored := clonePayment(*payment)
	stored.ID = id
	r.records[id] = stored
	r.order = append(r.order, id)
	return id, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	return r.Get(paymentID), nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.records {
		if payment.PayPalOrderID == orderID {
			clone := clonePayment(payment)
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *PaymentRepository) FindLatestByAppointmentID(ctx context.Context, appointmentID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		payment := r.records[r.order[i]]
		if payment.AppointmentID == appointmentID {
			clone := clonePayment(payment)
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *PaymentRepository) CountByAppointmentID(ctx context.Context, appointmentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, payment := range r.records {
		if payment.AppointmentID == appointmentID {
			count++
		}
	}
	return count, nil
}

func (r *PaymentRepository) FindAll(ctx context.Context, query contracts.PaymentQuery) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(query), nil
}

func (r *PaymentRepository) Count(ctx context.Context, query contracts.PaymentQuery) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	query.Skip, query.Limit = 0, 0
	return len(r.selectLocked(query)), nil
}

func (r *PaymentRepository) SummarizeByStatus(ctx context.Context, participantID string) ([]models.PaymentStatusSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := make(map[models.PaymentStatus]*models.PaymentStatusSummary)
	for _, payment := range r.selectLocked(contracts.PaymentQuery{ParticipantID: participantID}) {
		summary, ok := byStatus[payment.Status]
		if !ok {
			summary = &models.PaymentStatusSummary{Status: payment.Status}
			byStatus[payment.Status] = summary
		}
		summary.Count++
		summary.Amount += payment.Amount
	}
	result := make([]models.PaymentStatusSummary, 0, len(byStatus))
	for _, summary := range byStatus {
		result = append(result, *summary)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result, nil
}

func (r *PaymentRepository) CompareAndSwapStatus(ctx context.Context, paymentID string, expected []models.PaymentStatus, write contracts.PaymentWrite) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.records[paymentID]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range expected {
		if payment.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	payment.Status = write.To
	if write.PayerID != "" {
		payment.PayerID = write.PayerID
	}
	if write.TransactionDetails != nil {
		details := *write.TransactionDetails
		payment.TransactionDetails = &details
	}
	if write.RefundDetails != nil {
		details := *write.RefundDetails
		payment.RefundDetails = &details
	}
	payment.UpdatedAt = write.UpdatedAt
	r.records[paymentID] = payment
	return true, nil
}

func (r *PaymentRepository) selectLocked(query contracts.PaymentQuery) []models.Payment {
	result := make([]models.Payment, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		payment := r.records[r.order[i]]
		if query.ParticipantID != "" && !payment.IsParticipant(query.ParticipantID) {
			continue
		}
		if query.AppointmentID != "" && payment.AppointmentID != query.AppointmentID {
			continue
		}
		if len(query.Statuses) > 0 {
			matched := false
			for _, status := range query.Statuses {
				if payment.Status == status {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, clonePayment(payment))
	}
	if query.Skip > 0 {
		if query.Skip >= len(result) {
			return []models.Payment{}
		}
		result = result[query.Skip:]
	}
	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}
	return result
}

func clonePayment(p models.Payment) models.Payment {
	if p.TransactionDetails != nil {
		details := *p.TransactionDetails
		p.TransactionDetails = &details
	}
	if p.RefundDetails != nil {
		details := *p.RefundDetails
		p.RefundDetails = &details
	}
	return p
}
