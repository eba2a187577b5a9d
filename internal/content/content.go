// Package content holds the static editorial pages: blog categories and
// posts, pricing plans, and the about page copy.
package content

// Category groups blog posts by product type.
type Category struct {
	ID          string
	Name        string
	Description string
}

// Post is a short article that ends in an Amazon affiliate link.
type Post struct {
	ID               string
	CategoryID       string
	Title            string
	ShortDescription string
	Content          string
	AmazonLink       string
}

const lorem = " Lorem ipsum dolor sit amet, consectetur adipiscing elit. Nullam euismod, nisl eget aliquam ultricies, nunc nisl aliquet nunc, quis aliquam nisl nisl eu nunc. Sed euismod, nisl eget aliquam ultricies, nunc nisl aliquet nunc, quis aliquam nisl nisl eu nunc."

var categories = []Category{
	{ID: "electronics", Name: "Electronics", Description: "Explore the latest in electronic gadgets and accessories."},
	{ID: "home-goods", Name: "Home Goods", Description: "Discover essential and stylish items for your home."},
	{ID: "books", Name: "Books", Description: "Find your next great read in our diverse collection of books."},
	{ID: "fashion", Name: "Fashion", Description: "Stay trendy with our curated selection of clothing and accessories."},
}

var posts = []Post{
	{
		ID:               "best-tv-2024",
		CategoryID:       "electronics",
		Title:            "Best TVs of 2024",
		ShortDescription: "Our top picks for the best televisions to buy this year.",
		Content:          "Here are the best TVs you can buy in 2024..." + lorem,
		AmazonLink:       "https://www.amazon.com/best-tv-2024",
	},
	{
		ID:               "cozy-blankets",
		CategoryID:       "home-goods",
		Title:            "Top 5 Cozy Blankets for Winter",
		ShortDescription: "Stay warm and comfortable with these amazing blankets.",
		Content:          "These are the coziest blankets to keep you warm..." + lorem,
		AmazonLink:       "https://www.amazon.com/cozy-blankets",
	},
	{
		ID:               "must-read-novels",
		CategoryID:       "books",
		Title:            "Must-Read Novels of the Year",
		ShortDescription: "Dive into these captivating novels that everyone is talking about.",
		Content:          "You need to read these novels this year..." + lorem,
		AmazonLink:       "https://www.amazon.com/must-read-novels",
	},
	{
		ID:               "summer-fashion-trends",
		CategoryID:       "fashion",
		Title:            "Summer Fashion Trends You Need to Know",
		ShortDescription: "Get ready for summer with the latest fashion trends.",
		Content:          "Stay trendy this summer with these fashion trends..." + lorem,
		AmazonLink:       "https://www.amazon.com/summer-fashion-trends",
	},
}

// Categories returns every blog category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Posts returns every blog post, newest first.
func Posts() []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	return out
}

// PostsInCategory returns the posts filed under categoryID. An unknown
// category yields an empty slice.
func PostsInCategory(categoryID string) []Post {
	var out []Post
	for _, p := range posts {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// FindPost returns the post with id and whether it exists.
func FindPost(id string) (Post, bool) {
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}

// FindCategory returns the category with id and whether it exists.
func FindCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
