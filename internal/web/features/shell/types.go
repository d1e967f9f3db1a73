package shell

// Page is the data the shell template renders.
type Page struct {
	Lang         string
	Title        string
	Description  string
	ThemeColor   string
	FaviconURL   string
	ManifestURL  string
	TouchIconURL string
	Stylesheets  []string
	Nonce        string
	Settings     Settings
	Script       string
}

// Settings is exposed to the client-side app as window.settings.
type Settings struct {
	Mode        string `json:"mode"`
	AppID       int64  `json:"appId,omitempty"`
	Error       string `json:"error,omitempty"`
	Language    string `json:"language"`
	DefaultPage string `json:"defaultPage,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	Locked      bool   `json:"locked,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Shell modes.
const (
	ModeEditor = "editor"
	ModeApp    = "app"
)

// ErrorAppNotFound is the settings error of a shell served for an unknown app.
const ErrorAppNotFound = "app_not_found"

const (
	defaultTitle      = "App"
	defaultThemeColor = "#ffffff"
	fallbackLanguage  = "en"
	touchIconSize     = 192
)
