package handlers

import (
	"github.com/dimitrije/passkeeper/internal/password"
	"github.com/dimitrije/passkeeper/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// PasswordHandler exposes the generator and the strength meter. Neither
// touches stored data, so the routes are public.
type PasswordHandler struct {
	generator *password.Generator
}

func NewPasswordHandler(generator *password.Generator) *PasswordHandler {
	if generator == nil {
		generator = password.NewGenerator(nil)
	}
	return &PasswordHandler{generator: generator}
}

func (h *PasswordHandler) Generate(c *drift.Context) {
	var req dto.GeneratePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		c.BadRequest(validationMessage(err))
		return
	}

	opts := password.DefaultOptions()
	if req.Length > 0 {
		opts.Length = req.Length
	}
	opts.Uppercase = flagOrDefault(req.Uppercase)
	opts.Lowercase = flagOrDefault(req.Lowercase)
	opts.Numbers = flagOrDefault(req.Numbers)
	opts.Symbols = flagOrDefault(req.Symbols)

	pw := h.generator.Generate(opts)

	_ = c.JSON(200, dto.GeneratePasswordResponse{
		Password: pw,
		Length:   password.Length(pw),
		Strength: strengthResponse(pw),
	})
}

func (h *PasswordHandler) Strength(c *drift.Context) {
	var req dto.StrengthRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	_ = c.JSON(200, strengthResponse(req.Password))
}

func strengthResponse(pw string) dto.StrengthResponse {
	s := password.Evaluate(pw)
	return dto.StrengthResponse{
		Score: s.Score,
		Label: s.Label,
		Tier:  s.Tier.String(),
	}
}

func flagOrDefault(v *bool) bool {
	return v == nil || *v
}
