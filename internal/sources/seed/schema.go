package seed

// CategoryEntry is one curated category in the seed file.
type CategoryEntry struct {
	Name        string   `yaml:"name"`
	Order       int      `yaml:"order"`
	Countries   []string `yaml:"countries"`
	Professions []string `yaml:"professions"`
}

// LinkEntry is one curated bookmark in the seed file.
type LinkEntry struct {
	Name     string `yaml:"name"`
	Link     string `yaml:"link"`
	Category string `yaml:"category"`
	Order    int    `yaml:"order"`
	Icon     string `yaml:"icon"`
}

// Config is the root structure of seed.yaml.
type Config struct {
	Categories []CategoryEntry `yaml:"categories"`
	Links      []LinkEntry     `yaml:"links"`
}
