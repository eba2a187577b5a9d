package content

// Plan is a subscription tier shown on the pricing page. Subscribing is
// not implemented; the page only advertises the tiers.
type Plan struct {
	Name        string
	Tagline     string
	Price       string
	Features    []string
	MostPopular bool
}

var plans = []Plan{
	{
		Name:     "Basic Plan",
		Tagline:  "Essential affiliate link management tools.",
		Price:    "$9.99",
		Features: []string{"Manage up to 50 links", "Basic Analytics", "Email Support"},
	},
	{
		Name:        "Premium Plan",
		Tagline:     "Includes AI features and more links.",
		Price:       "$19.99",
		Features:    []string{"Manage up to 250 links", "Advanced Analytics", "AI Description Generator", "Priority Email Support"},
		MostPopular: true,
	},
	{
		Name:     "Business Plan",
		Tagline:  "For serious marketers and teams.",
		Price:    "$29.99",
		Features: []string{"Unlimited Links", "Advanced Analytics & Reports", "AI Description Generator", "Dedicated Phone Support", "Team Access (up to 5 users)"},
	},
}

// Plans returns the pricing tiers in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	for i, p := range plans {
		out[i] = p
		out[i].Features = append([]string(nil), p.Features...)
	}
	return out
}

// About is the copy for the about page.
type About struct {
	Title    string
	Subtitle string
	Intro    string
	Mission  string
	Features []string
}

// AboutPage returns the about page copy.
func AboutPage() About {
	return About{
		Title:    "About AffiliateLink Hub",
		Subtitle: "Learn more about our platform.",
		Intro:    "AffiliateLink Hub is a platform designed to help you manage and promote your affiliate links. We provide tools to generate descriptions.",
		Mission:  "Our mission is to empower affiliate marketers with the resources they need to succeed. We aim to simplify the process of managing affiliate links.",
		Features: []string{"AI-Powered Description Generation", "Centralized Link Management", "Easy Promotion Tools"},
	}
}
