package config

// FeedSource describes one syndication source to ingest from.
type FeedSource struct {
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Language string `yaml:"language"`
}

// SourceFile is the on-disk shape of a feed definition file.
type SourceFile struct {
	Feeds []FeedSource `yaml:"feeds"`
}
