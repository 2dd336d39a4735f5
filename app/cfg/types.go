package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port                string
	APIAccessKey        string
	WorkerCount         int
	SchedulerInterval   int
	ExpiryCheckInterval int
	ExpiringSoonDays    int
	CategoriesFile      string
	PrefsFile           string

	// Notification configuration
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPTo       string
	SMTPPassword string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
