package appconf

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(flag string) Environment {
	switch flag {
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}

// Config holds all the configuration settings for the application. The
// values are read from command-line flags when the server starts; Version
// is stamped by the build.
type Config struct {
	Env       Environment
	Port      int
	ApiKeys   []string
	RateLimit int
	RateBurst int
	Case1Path string
	Case2Path string
	DBPath    string
	Verbose   bool
	Version   string
}
