package config

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"

	"github.com/vietddude/paramretry/internal/core/classify"
	"github.com/vietddude/paramretry/internal/core/domain"
)

// Build resolves kind names against registry and returns a validated policy
// together with the name pattern. Every problem found is reported at once.
func (p PolicyConfig) Build(registry *classify.Registry) (domain.Policy, string, error) {
	p.applyDefaults()

	var result *multierror.Error
	if *p.Repeats < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: repeats must be at least 1, got %d",
			domain.ErrInvalidConfig, *p.Repeats))
	}
	if *p.MinSuccess < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: min success must be at least 1, got %d",
			domain.ErrInvalidConfig, *p.MinSuccess))
	}
	policy := domain.Policy{Repeats: *p.Repeats, MinSuccess: *p.MinSuccess}

	pattern := strings.TrimSpace(*p.Name)
	if pattern == "" {
		result = multierror.Append(result, fmt.Errorf("%w: name pattern must not be blank", domain.ErrInvalidConfig))
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, name := range p.Retryable {
		if !seen.Add(name) {
			result = multierror.Append(result, fmt.Errorf("%w: %w", domain.ErrInvalidConfig,
				fmt.Errorf("%w: %s", classify.ErrDuplicateKind, name)))
			continue
		}
		kind, err := registry.Lookup(name)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err))
			continue
		}
		policy.Retryable = append(policy.Retryable, kind)
	}

	if err := result.ErrorOrNil(); err != nil {
		return domain.Policy{}, "", err
	}
	return policy, pattern, nil
}
