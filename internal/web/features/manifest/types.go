package manifest

// Manifest is the web app manifest document. Field order is the key order of
// the encoded JSON.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Description     string `json:"description,omitempty"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope"`
	Display         string `json:"display"`
	Orientation     string `json:"orientation"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
	Icons           []Icon `json:"icons"`
}

// Icon is one entry of the manifest icons list.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

// Defaults for apps whose definition leaves a field empty.
const (
	DefaultName     = "App"
	DefaultDisplay  = "standalone"
	DefaultStartURL = "/"
	DefaultColor    = "#ffffff"
)
