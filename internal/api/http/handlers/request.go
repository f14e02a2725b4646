package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

// pathID returns the named path parameter. Values that are not UUIDs cannot
// match any row, so they are reported as not found.
func pathID(c *fiber.Ctx, param, resource string) (string, error) {
	raw := c.Params(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{param: raw})
	}
	return id.String(), nil
}

// bindBody decodes and validates a JSON body. An empty body leaves dst at its
// zero value before validation.
func bindBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	return dto.Validate(dst)
}

func isUUID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}
