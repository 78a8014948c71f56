package scrape

const (
	// WikiTableXPath matches every styled data table on a Wikipedia page
	WikiTableXPath = "//table[contains(@class,'wikitable')]"
	// FirstWikiTableXPath matches only the first styled data table and is
	// the default selector for the tablescrape tool
	FirstWikiTableXPath = "(//table[contains(@class,'wikitable')])[1]"
)
