package server

import (
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultHomeURL = "https://v0-base-mini-app-six.vercel.app"

// Manifest is the Farcaster mini-app discovery document.
type Manifest struct {
	MiniApp            MiniApp            `json:"miniapp" yaml:"miniapp"`
	AccountAssociation AccountAssociation `json:"accountAssociation" yaml:"accountAssociation"`
}

type MiniApp struct {
	Version               string   `json:"version" yaml:"version"`
	Name                  string   `json:"name" yaml:"name"`
	HomeURL               string   `json:"homeUrl" yaml:"homeUrl"`
	IconURL               string   `json:"iconUrl" yaml:"iconUrl"`
	SplashImageURL        string   `json:"splashImageUrl" yaml:"splashImageUrl"`
	SplashBackgroundColor string   `json:"splashBackgroundColor" yaml:"splashBackgroundColor"`
	Subtitle              string   `json:"subtitle" yaml:"subtitle"`
	Description           string   `json:"description" yaml:"description"`
	ScreenshotURLs        []string `json:"screenshotUrls" yaml:"screenshotUrls"`
	PrimaryCategory       string   `json:"primaryCategory" yaml:"primaryCategory"`
	Tags                  []string `json:"tags" yaml:"tags"`
	HeroImageURL          string   `json:"heroImageUrl" yaml:"heroImageUrl"`
	Tagline               string   `json:"tagline" yaml:"tagline"`
	OGTitle               string   `json:"ogTitle" yaml:"ogTitle"`
	OGDescription         string   `json:"ogDescription" yaml:"ogDescription"`
	OGImageURL            string   `json:"ogImageUrl" yaml:"ogImageUrl"`
	NoIndex               bool     `json:"noindex" yaml:"noindex"`
}

type AccountAssociation struct {
	Header    string `json:"header" yaml:"header"`
	Payload   string `json:"payload" yaml:"payload"`
	Signature string `json:"signature" yaml:"signature"`
}

// DefaultManifest is the built-in manifest rooted at homeURL.
func DefaultManifest(homeURL string) Manifest {
	if homeURL == "" {
		homeURL = defaultHomeURL
	}
	logo := homeURL + "/base-logo.png"
	return Manifest{
		MiniApp: MiniApp{
			Version:               "1",
			Name:                  "Base Score",
			HomeURL:               homeURL,
			IconURL:               logo,
			SplashImageURL:        logo,
			SplashBackgroundColor: "#0052FF",
			Subtitle:              "Track your Base Chain score",
			Description: "Base Score lets you instantly view your on-chain activity score on the Base network. " +
				"Track your progress and understand your engagement across the Base ecosystem.",
			ScreenshotURLs:  []string{logo},
			PrimaryCategory: "finance",
			Tags:            []string{"finance", "analytics", "base"},
			HeroImageURL:    logo,
			Tagline:         "Your Base analytics companion",
			OGTitle:         "Base Score: Track Your Base Chain Score",
			OGDescription:   "Check your Base Chain activity score instantly and share your progress.",
			OGImageURL:      logo,
		},
	}
}

// LoadManifest overlays the YAML file at path onto base. Fields absent from
// the file keep their base values.
func LoadManifest(path string, base Manifest) (Manifest, error) {
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m := base
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

func (s *Server) handleManifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=0")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, s.manifest)
}
