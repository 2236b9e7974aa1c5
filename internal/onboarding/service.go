package onboarding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/luisherrera/barberlane-backend/internal/barbers"
	"github.com/luisherrera/barberlane-backend/pkg/config"
	"github.com/luisherrera/barberlane-backend/pkg/db/models"
	"github.com/luisherrera/barberlane-backend/pkg/enums"
	"github.com/luisherrera/barberlane-backend/pkg/errors"
	"github.com/luisherrera/barberlane-backend/pkg/logger"
)

const defaultCountry = "US"

// Hints carries optional prefill values for the processor account.
type Hints struct {
	BusinessName string
	Email        string
	Country      string
}

// Result is the onboarding outcome returned to the caller.
type Result struct {
	URL       string `json:"url"`
	AccountID string `json:"accountId"`
}

// Service starts or resumes merchant onboarding for a barber.
type Service interface {
	Start(ctx context.Context, userID uuid.UUID, hints Hints) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams holds the dependencies for the onboarding service.
type ServiceParams struct {
	Barbers  barbers.Repository
	Stripe   StripeConnectClient
	TxRunner txRunner
	Config   config.StripeConfig
	Logger   *logger.Logger
}

type serviceImpl struct {
	barbers  barbers.Repository
	stripe   StripeConnectClient
	txRunner txRunner
	cfg      config.StripeConfig
	logg     *logger.Logger
}

// NewService validates the dependencies and returns an onboarding service.
func NewService(params ServiceParams) (Service, error) {
	if params.Barbers == nil {
		return nil, fmt.Errorf("onboarding: barbers repository is required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("onboarding: stripe client is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("onboarding: tx runner is required")
	}
	if params.Config.ConnectRefreshURL == "" || params.Config.ConnectReturnURL == "" {
		return nil, fmt.Errorf("onboarding: connect refresh and return URLs are required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("onboarding: logger is required")
	}
	return &serviceImpl{
		barbers:  params.Barbers,
		stripe:   params.Stripe,
		txRunner: params.TxRunner,
		cfg:      params.Config,
		logg:     params.Logger,
	}, nil
}

// Start mints an Express account for the barber when none exists, then
// returns a fresh single-use onboarding link. Re-running with a stored
// account id skips account creation, so an abandoned flow resumes on the
// same account instead of minting duplicates.
func (s *serviceImpl) Start(ctx context.Context, userID uuid.UUID, hints Hints) (*Result, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "authenticated user required")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())

	profile, err := s.barbers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading barber profile")
	}
	if profile == nil {
		return nil, errors.New(errors.CodeValidation, "barber profile not found for user")
	}

	ctx = s.logg.WithBarberID(ctx, profile.ID.String())

	var accountID string
	if profile.StripeAccountID != nil && *profile.StripeAccountID != "" {
		accountID = *profile.StripeAccountID
		s.logg.Info(ctx, "resuming onboarding on existing connect account")
	} else {
		accountID, err = s.createAccount(ctx, profile, hints)
		if err != nil {
			return nil, err
		}
	}

	link, err := s.stripe.CreateAccountLink(ctx, &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(s.cfg.ConnectRefreshURL),
		ReturnURL:  stripe.String(s.cfg.ConnectReturnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return nil, errors.FromStripe(err, "creating onboarding link")
	}

	return &Result{URL: link.URL, AccountID: accountID}, nil
}

func (s *serviceImpl) createAccount(ctx context.Context, profile *models.BarberProfile, hints Hints) (string, error) {
	email := hints.Email
	if email == "" {
		email = profile.Email
	}
	businessName := hints.BusinessName
	if businessName == "" {
		businessName = profile.BusinessName
	}
	country := hints.Country
	if country == "" {
		country = defaultCountry
	}

	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Email:   stripe.String(email),
		Country: stripe.String(country),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name: stripe.String(businessName),
		},
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}

	acct, err := s.stripe.CreateAccount(ctx, params)
	if err != nil {
		return "", errors.FromStripe(err, "creating connect account")
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.barbers.WithTx(tx)
		if err := repo.SetStripeAccountID(ctx, profile.ID, acct.ID); err != nil {
			return err
		}
		return repo.CreateConnectAccount(ctx, &models.ConnectAccount{
			BarberID:        profile.ID,
			StripeAccountID: acct.ID,
			Status:          enums.ConnectAccountStatusPending,
		})
	})
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "storing connect account")
	}

	s.logg.Info(s.logg.WithField(ctx, "stripe_account_id", acct.ID), "connect account created")
	return acct.ID, nil
}
