// Package domains implements the availability search: it expands a keyword
// across candidate extensions and keeps the ones the registrar reports as
// registrable.
package domains

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"domainly/internal/platform/middleware"
	"domainly/internal/registrar"
	dErrors "domainly/pkg/domainerrors"
)

// maxConcurrentChecks bounds the availability fan-out per search.
const maxConcurrentChecks = 8

// RegistrarClient is the slice of the registrar adapter the service needs.
type RegistrarClient interface {
	CheckAvailability(ctx context.Context, domain string) (registrar.Availability, error)
	VerifyRegistrantEmail(ctx context.Context, domain string) error
}

// Service performs availability searches.
type Service struct {
	registrar RegistrarClient
	logger    *slog.Logger
}

func NewService(registrarClient RegistrarClient, logger *slog.Logger) *Service {
	return &Service{registrar: registrarClient, logger: logger}
}

// Search checks keyword+extension for every extension in parallel and
// returns the available candidates in the requested extension order. A
// failed lookup for one extension skips that candidate rather than failing
// the whole search.
func (s *Service) Search(ctx context.Context, keyword string, extensions []string) ([]registrar.Availability, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "domain_name is required")
	}
	if len(extensions) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "extensions must not be empty")
	}

	candidates := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		candidates = append(candidates, keyword+ext)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)

	results := make([]*registrar.Availability, len(candidates))
	for i, candidate := range candidates {
		g.Go(func() error {
			result, err := s.registrar.CheckAvailability(ctx, candidate)
			if err != nil {
				// Skip this candidate; the siblings keep running.
				s.logger.WarnContext(ctx, "availability check failed",
					"request_id", middleware.GetRequestID(ctx),
					"domain", candidate,
					"error", err.Error(),
				)
				return nil
			}
			if result.Available {
				results[i] = &result
			}
			return nil
		})
	}
	_ = g.Wait()

	available := make([]registrar.Availability, 0, len(candidates))
	for _, result := range results {
		if result != nil {
			available = append(available, *result)
		}
	}
	return available, nil
}

// VerifyRegistrantEmail asks the registrar to resend the registrant
// verification email for a registered domain.
func (s *Service) VerifyRegistrantEmail(ctx context.Context, domain string) error {
	if strings.TrimSpace(domain) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "domain is required")
	}
	return s.registrar.VerifyRegistrantEmail(ctx, domain)
}
