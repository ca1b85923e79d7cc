package dto

// GeneratePasswordRequest leaves every field optional. A nil class flag means
// true and a zero length means the default length.
type GeneratePasswordRequest struct {
	Length    int   `json:"length" validate:"gte=0,lte=1024"`
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Numbers   *bool `json:"numbers"`
	Symbols   *bool `json:"symbols"`
}

type GeneratePasswordResponse struct {
	Password string           `json:"password"`
	Length   int              `json:"length"`
	Strength StrengthResponse `json:"strength"`
}

type StrengthRequest struct {
	Password string `json:"password"`
}

type StrengthResponse struct {
	Score int    `json:"score"`
	Label string `json:"label"`
	Tier  string `json:"tier"`
}
