package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/vitaminpack/internal/fulfillment"
	"github.com/terraincognita07/vitaminpack/internal/services"
)

type credentialsInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

type magicLinkInput struct {
	Email string `json:"email" form:"email"`
}

type onboardingInput struct {
	DisplayName string   `json:"display_name" form:"display_name"`
	HealthGoals []string `json:"health_goals" form:"health_goals"`
	Diet        string   `json:"diet" form:"diet"`
}

type testPackInput struct {
	Supplements  []fulfillment.Supplement `json:"supplements"`
	CustomerInfo fulfillment.CustomerInfo `json:"customerInfo"`
	Email        string                   `json:"-" form:"email"`
}

func parseCredentials(c *fiber.Ctx) (credentialsInput, error) {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return credentialsInput{}, err
	}

	parsed, err := services.ParseCredentials(credentials.Email, credentials.Password)
	if err != nil {
		return credentialsInput{}, err
	}
	credentials.Email = parsed.Email
	credentials.Password = parsed.Password
	credentials.Next = strings.TrimSpace(credentials.Next)
	return credentials, nil
}

func parseOnboardingInput(c *fiber.Ctx) (services.OnboardingInput, error) {
	input := onboardingInput{}
	if err := c.BodyParser(&input); err != nil {
		return services.OnboardingInput{}, err
	}
	return services.OnboardingInput{
		DisplayName: input.DisplayName,
		HealthGoals: input.HealthGoals,
		Diet:        input.Diet,
	}, nil
}

// parseTestPackInput accepts JSON from scripts and the form on the pack
// builder page. An empty body means the default supplement list.
func parseTestPackInput(c *fiber.Ctx) (fulfillment.PackRequest, error) {
	input := testPackInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return fulfillment.PackRequest{}, err
		}
	}

	request := fulfillment.PackRequest{
		Supplements:  input.Supplements,
		CustomerInfo: input.CustomerInfo,
	}
	if len(request.Supplements) == 0 {
		request.Supplements = fulfillment.DefaultSupplements()
	}
	if email := services.NormalizeEmail(input.Email); email != "" && request.CustomerInfo.Email == "" {
		request.CustomerInfo.Email = email
	}
	return request, nil
}
