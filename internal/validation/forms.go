package validation

import "strings"

// LinkForm is the create/edit form for an affiliate link.
type LinkForm struct {
	ProductName  string `form:"product_name" json:"productName" validate:"required,min=2,max=200"`
	Description  string `form:"description" json:"description" validate:"required,min=10,max=2000"`
	ImageURL     string `form:"image_url" json:"imageUrl" validate:"required,http_url"`
	AffiliateURL string `form:"affiliate_url" json:"affiliateUrl" validate:"required,http_url"`
}

func (LinkForm) Messages() map[string]string {
	return map[string]string{
		"product_name.required":  "Product name must be at least 2 characters.",
		"product_name.min":       "Product name must be at least 2 characters.",
		"product_name.max":       "Product name must be at most 200 characters.",
		"description.required":   "Description must be at least 10 characters.",
		"description.min":        "Description must be at least 10 characters.",
		"description.max":        "Description must be at most 2000 characters.",
		"image_url.required":     "Image URL is required.",
		"image_url.http_url":     "Image URL must be a valid URL.",
		"affiliate_url.required": "Affiliate URL is required.",
		"affiliate_url.http_url": "Affiliate URL must be a valid URL.",
	}
}

// Trim strips surrounding whitespace from every field.
func (f *LinkForm) Trim() {
	f.ProductName = strings.TrimSpace(f.ProductName)
	f.Description = strings.TrimSpace(f.Description)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.AffiliateURL = strings.TrimSpace(f.AffiliateURL)
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

func (LoginForm) Messages() map[string]string {
	return map[string]string{
		"email.required":    "Invalid email address.",
		"email.email":       "Invalid email address.",
		"password.required": "Password must be at least 6 characters.",
		"password.min":      "Password must be at least 6 characters.",
	}
}

// SignupForm is the account creation form.
type SignupForm struct {
	Email           string `form:"email" json:"email" validate:"required,email"`
	Password        string `form:"password" json:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" json:"confirmPassword" validate:"eqfield=Password"`
}

func (SignupForm) Messages() map[string]string {
	return map[string]string{
		"email.required":           "Invalid email address.",
		"email.email":              "Invalid email address.",
		"password.required":        "Password should be at least 6 characters.",
		"password.min":             "Password should be at least 6 characters.",
		"confirm_password.eqfield": "Passwords don't match",
	}
}

// DescribeForm is the input to the AI description generator.
type DescribeForm struct {
	ProductName string `form:"product_name" json:"productName" validate:"required,min=2,max=200"`
	Keywords    string `form:"keywords" json:"keywords" validate:"required,min=3,max=500"`
}

func (DescribeForm) Messages() map[string]string {
	return map[string]string{
		"product_name.required": "Product name must be at least 2 characters.",
		"product_name.min":      "Product name must be at least 2 characters.",
		"product_name.max":      "Product name must be at most 200 characters.",
		"keywords.required":     "Keywords must be at least 3 characters.",
		"keywords.min":          "Keywords must be at least 3 characters.",
		"keywords.max":          "Keywords must be at most 500 characters.",
	}
}

// LinkPatchForm is a partial edit. Nil fields are left unchanged; a
// present field must satisfy the same rules as in LinkForm.
type LinkPatchForm struct {
	ProductName  *string `form:"product_name" json:"productName" validate:"omitnil,min=2,max=200"`
	Description  *string `form:"description" json:"description" validate:"omitnil,min=10,max=2000"`
	ImageURL     *string `form:"image_url" json:"imageUrl" validate:"omitnil,http_url"`
	AffiliateURL *string `form:"affiliate_url" json:"affiliateUrl" validate:"omitnil,http_url"`
}

func (LinkPatchForm) Messages() map[string]string {
	return LinkForm{}.Messages()
}

// Trim strips surrounding whitespace from every present field.
func (f *LinkPatchForm) Trim() {
	for _, p := range []*string{f.ProductName, f.Description, f.ImageURL, f.AffiliateURL} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// AccessibilityForm carries the display preferences stored in cookies.
type AccessibilityForm struct {
	FontSize       string `form:"font_size" validate:"oneof=small medium large"`
	Contrast       string `form:"contrast" validate:"oneof=default high-contrast-light high-contrast-dark"`
	HighlightLinks bool   `form:"highlight_links"`
}

func (AccessibilityForm) Messages() map[string]string {
	return map[string]string{
		"font_size.oneof": "Font size must be small, medium or large.",
		"contrast.oneof":  "Unknown contrast mode.",
	}
}
