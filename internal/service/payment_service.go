package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"reportsvc/internal/domain"
	"reportsvc/internal/port"
	"reportsvc/internal/promo"
)

// PaymentService defines the payment lifecycle contract.
type PaymentService interface {
	// GetPrice evaluates the final price of a report, optionally with a
	// promo code, without creating a payment or touching usage counters.
	GetPrice(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string) (*domain.PriceQuote, error)
	// CreatePayment opens a checkout session and returns the
	// confirmation URL to redirect the user to.
	CreatePayment(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string, requestID string) (string, error)
	// ApplyNotification reconciles a gateway webhook delivery.
	ApplyNotification(ctx context.Context, body []byte) error
}

type paymentService struct {
	reportRepo port.ReportRepository
	promoRepo  port.PromocodeRepository
	gateway    port.PaymentGateway
}

// NewPaymentService creates a new PaymentService implementation.
func NewPaymentService(
	reportRepo port.ReportRepository,
	promoRepo port.PromocodeRepository,
	gateway port.PaymentGateway,
) PaymentService {
	return &paymentService{
		reportRepo: reportRepo,
		promoRepo:  promoRepo,
		gateway:    gateway,
	}
}

// quote fetches the report under ownership and parse guards and
// evaluates the optional promo code against its price.
func (s *paymentService) quote(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string) (*domain.Report, domain.PriceQuote, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, domain.PriceQuote{}, err
	}
	if report.UserID != user.UserID {
		return nil, domain.PriceQuote{}, domain.ErrForbidden
	}
	if report.ParseStatus != domain.ParseStatusParsed {
		return nil, domain.PriceQuote{}, domain.ErrReportNotParsed
	}
	if !report.Price.Valid {
		return nil, domain.PriceQuote{}, domain.ErrPriceNotSet
	}

	var code *domain.Promocode
	if promocode != nil {
		code, err = s.promoRepo.GetByCode(ctx, strings.ToUpper(*promocode))
		if err != nil {
			return nil, domain.PriceQuote{}, fmt.Errorf("paymentService: %w", err)
		}
	}

	q := promo.Evaluate(report, code, promocode != nil, time.Now().UTC())
	return report, q, nil
}

func (s *paymentService) GetPrice(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string) (*domain.PriceQuote, error) {
	_, q, err := s.quote(ctx, user, reportID, promocode)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *paymentService) CreatePayment(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string, requestID string) (string, error) {
	report, q, err := s.quote(ctx, user, reportID, promocode)
	if err != nil {
		return "", err
	}
	switch report.PaymentStatus {
	case domain.PaymentStatusPayed:
		return "", domain.ErrReportAlreadyPayed
	case domain.PaymentStatusInProgress:
		return "", domain.ErrPaymentInProgress
	}

	confirmationURL, err := s.gateway.CreatePayment(ctx, port.PaymentRequest{
		User:      user,
		Report:    report,
		Amount:    q.FinalPrice,
		Promocode: q.UsedPromocode,
		RequestID: requestID,
	})
	if err != nil {
		return "", fmt.Errorf("paymentService.CreatePayment: %w", err)
	}
	log.Printf("paymentService.CreatePayment: payment for report %s created, amount %s",
		reportID, q.FinalPrice)

	if err := s.reportRepo.UpdatePaymentStatus(ctx, reportID,
		domain.PaymentStatusInProgress, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("paymentService.CreatePayment: %w", err)
	}

	if q.UsedPromocode != nil {
		if err := s.promoRepo.AdjustUsages(ctx, *q.UsedPromocode, -1); err != nil {
			// The payment already exists at the gateway, so the request
			// must not fail here. The counter drifts by one until fixed
			// by hand.
			log.Printf("paymentService.CreatePayment: decrementing promocode %s failed: %v",
				*q.UsedPromocode, err)
		}
	}

	return confirmationURL, nil
}

func (s *paymentService) ApplyNotification(ctx context.Context, body []byte) error {
	notif, err := s.gateway.ParseNotification(body)
	if err != nil {
		return fmt.Errorf("paymentService.ApplyNotification: %w", err)
	}

	reportID := notif.Metadata.ReportID
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		// A notification for an unknown report means the metadata token
		// was minted for a row that is gone: a server-side problem, not
		// a user-facing not-found.
		if errors.Is(err, domain.ErrReportNotFound) {
			return fmt.Errorf("paymentService.ApplyNotification: report %s referenced by webhook does not exist", reportID)
		}
		return fmt.Errorf("paymentService.ApplyNotification: %w", err)
	}

	var target domain.PaymentStatus
	switch notif.Event {
	case domain.PaymentEventSucceeded:
		target = domain.PaymentStatusPayed
	case domain.PaymentEventCanceled:
		if notif.CancellationReason == domain.CancellationReasonExpiredOnConfirmation {
			target = domain.PaymentStatusNotPayed
		} else {
			target = domain.PaymentStatusError
		}
	default:
		return fmt.Errorf("paymentService.ApplyNotification: unexpected event %q", notif.Event)
	}

	// Gateways deliver at least once. A repeat of an already applied
	// transition must not touch the status timestamp or the promo
	// counter again.
	if report.PaymentStatus == target {
		log.Printf("paymentService.ApplyNotification: report %s already in status %s, skipping",
			reportID, target)
		return nil
	}

	if err := s.reportRepo.UpdatePaymentStatus(ctx, reportID, target, time.Now().UTC()); err != nil {
		return fmt.Errorf("paymentService.ApplyNotification: %w", err)
	}
	log.Printf("paymentService.ApplyNotification: report %s payment status set to %s (payment %s)",
		reportID, target, notif.PaymentID)

	if target == domain.PaymentStatusError && notif.Metadata.Promocode != nil {
		if err := s.promoRepo.AdjustUsages(ctx, *notif.Metadata.Promocode, 1); err != nil {
			return fmt.Errorf("paymentService.ApplyNotification: %w", err)
		}
		log.Printf("paymentService.ApplyNotification: promocode %s usage restored",
			*notif.Metadata.Promocode)
	}
	return nil
}
