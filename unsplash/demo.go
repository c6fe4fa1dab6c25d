package unsplash

import "strings"

// sampleImages is the demo catalogue served when no access key is
// configured. The photos are real Unsplash assets covering the topics
// social posts most often need.
var sampleImages = []Image{
	{
		ID:              "demo-1",
		URL:             "https://images.unsplash.com/photo-1611162617213-7d7a39e9b1d7?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1611162617213-7d7a39e9b1d7?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Social media marketing workspace",
		Description:     "Person using laptop for social media marketing",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1611162617213-7d7a39e9b1d7",
		Width:           1080,
		Height:          720,
	},
	{
		ID:              "demo-2",
		URL:             "https://images.unsplash.com/photo-1518757944516-6f13049afe50?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1518757944516-6f13049afe50?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Morning coffee lifestyle",
		Description:     "Perfect cup of coffee on wooden table",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1518757944516-6f13049afe50",
		Width:           1080,
		Height:          1350,
	},
	{
		ID:              "demo-3",
		URL:             "https://images.unsplash.com/photo-1526779259212-939e64788e8e?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1526779259212-939e64788e8e?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Modern workspace setup",
		Description:     "Clean and organized office workspace",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1526779259212-939e64788e8e",
		Width:           1080,
		Height:          720,
	},
	{
		ID:              "demo-4",
		URL:             "https://images.unsplash.com/photo-1493723843671-1d655e66ac1c?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1493723843671-1d655e66ac1c?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Delicious food photography",
		Description:     "Beautiful food presentation on table",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1493723843671-1d655e66ac1c",
		Width:           1080,
		Height:          1080,
	},
	{
		ID:              "demo-5",
		URL:             "https://images.unsplash.com/photo-1469474968028-56623f02e42e?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1469474968028-56623f02e42e?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Beautiful nature landscape",
		Description:     "Scenic mountain landscape view",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1469474968028-56623f02e42e",
		Width:           1080,
		Height:          720,
	},
	{
		ID:              "demo-6",
		URL:             "https://images.unsplash.com/photo-1526772662000-3f88f10405ff?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1526772662000-3f88f10405ff?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Fashion and lifestyle",
		Description:     "Stylish fashion photography",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1526772662000-3f88f10405ff",
		Width:           1080,
		Height:          1350,
	},
	{
		ID:              "demo-7",
		URL:             "https://images.unsplash.com/photo-1551632811-561732d1e306?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1551632811-561732d1e306?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Technology and innovation",
		Description:     "Modern technology workspace",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1551632811-561732d1e306",
		Width:           1080,
		Height:          720,
	},
	{
		ID:              "demo-8",
		URL:             "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080",
		Thumbnail:       "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=400",
		Alt:             "Fitness and health",
		Description:     "Healthy lifestyle and fitness",
		Photographer:    "Demo Photographer",
		PhotographerURL: "https://unsplash.com/@demo",
		DownloadURL:     "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b",
		Width:           1080,
		Height:          1350,
	},
}

// SampleImages returns a copy of the demo catalogue.
func SampleImages() []Image {
	out := make([]Image, len(sampleImages))
	copy(out, sampleImages)
	return out
}

func matchesQuery(img Image, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(img.Alt), q) ||
		strings.Contains(strings.ToLower(img.Description), q)
}

func (c *Client) searchDemo(query string, page, perPage int) *SearchResult {
	var hits []Image
	for _, img := range sampleImages {
		if matchesQuery(img, query) {
			hits = append(hits, img)
		}
	}

	totalPages := (len(hits) + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > len(hits) {
		start = len(hits)
	}
	end := start + perPage
	if end > len(hits) {
		end = len(hits)
	}

	return &SearchResult{
		Total:      len(hits),
		TotalPages: totalPages,
		Results:    hits[start:end],
	}
}

func (c *Client) randomDemo(count int, query string) []Image {
	var pool []Image
	for _, img := range sampleImages {
		if matchesQuery(img, query) {
			pool = append(pool, img)
		}
	}

	// Fisher-Yates over the filtered pool.
	for i := len(pool) - 1; i > 0; i-- {
		j := c.randIndex(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}

	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
