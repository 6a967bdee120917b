package feeds

// defaultSources is the compiled-in luggage and travel-retail watch list.
var defaultSources = []Source{
	{
		ID:   "google-news-luggage",
		Name: "Google News: luggage",
		URL:  "https://news.google.com/rss/search?q=%E6%8B%89%E6%9D%86%E7%AE%B1+OR+%E8%A1%8C%E6%9D%8E%E7%AE%B1+OR+luggage+OR+suitcase+OR+%E7%AE%B1%E5%8C%85%E5%93%81%E7%89%8C+OR+%E6%96%B0%E5%93%81%E6%8B%89%E6%9D%86%E7%AE%B1&hl=zh-CN&gl=CN&ceid=CN:zh-Hans",
	},
	{ID: "luggage-magazine", Name: "Luggage Magazine", URL: "https://www.luggagemagazine.com/feed/"},
	{ID: "travel-accessories", Name: "Travel Goods Association", URL: "https://www.travelaccessories.org/feed/"},
	{ID: "samsonite", Name: "Samsonite blog", URL: "https://www.samsonite.com/blog/feed/"},
	{ID: "rimowa", Name: "Rimowa blog", URL: "https://www.rimowa.com/blog/feed/"},
	{ID: "tumi", Name: "Tumi blog", URL: "https://www.tumi.com/blog/feed/"},
	{ID: "american-tourister", Name: "American Tourister blog", URL: "https://www.americantourister.com/blog/feed/"},
	{ID: "moodie-davitt", Name: "The Moodie Davitt Report", URL: "https://www.themoodieblog.com/feed/"},
}

// DefaultRegistry returns the compiled-in sources.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(defaultSources)
}
