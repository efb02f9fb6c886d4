package frame

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/lovecaster/lovecaster/internal/engine"
	"github.com/lovecaster/lovecaster/internal/profile"
)

// Button actions understood by Farcaster clients.
const (
	ActionPost = "post"
	ActionLink = "link"
)

// Button is one frame button. Target is only used by link buttons.
type Button struct {
	Label  string
	Action string
	Target string
}

// Card is a rendered frame: an image, up to four buttons and the state to
// hand back on the next POST.
type Card struct {
	Title   string
	Caption string
	Image   string
	PostURL string
	State   string
	Buttons []Button
}

var cardTemplate = template.Must(template.New("card").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Caption}}">
<meta property="og:image" content="{{.Image}}">
<meta property="fc:frame" content="vNext">
<meta property="fc:frame:image" content="{{.Image}}">
<meta property="fc:frame:image:aspect_ratio" content="1:1">
<meta property="fc:frame:post_url" content="{{.PostURL}}">
<meta property="fc:frame:state" content="{{.State}}">
{{- range $i, $b := .Buttons}}
<meta property="fc:frame:button:{{inc $i}}" content="{{$b.Label}}">
<meta property="fc:frame:button:{{inc $i}}:action" content="{{$b.Action}}">
{{- if $b.Target}}
<meta property="fc:frame:button:{{inc $i}}:target" content="{{$b.Target}}">
{{- end}}
{{- end}}
</head>
<body>
<h1>{{.Title}}</h1>
<img src="{{.Image}}" alt="{{.Caption}}" width="400" height="400">
<p>{{.Caption}}</p>
</body>
</html>
`))

// HTML renders the card as a frame document.
func (c Card) HTML() (string, error) {
	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	return buf.String(), nil
}

// Renderer maps engine results onto cards.
type Renderer struct {
	publicURL  string
	startImage string
}

// NewRenderer builds a Renderer. publicURL is the externally visible base of
// this service, without trailing slash.
func NewRenderer(publicURL, startImage string) *Renderer {
	return &Renderer{publicURL: publicURL, startImage: startImage}
}

const title = "Lovecaster ❤️"

func (r *Renderer) postURL() string {
	return r.publicURL + "/frames"
}

// Start is the card shown before any interaction.
func (r *Renderer) Start() Card {
	return Card{
		Title:   title,
		Caption: "Swipe through Farcaster and find your match",
		Image:   r.startImage,
		PostURL: r.postURL(),
		State:   EncodeState(engine.Initial()),
		Buttons: []Button{{Label: "Start!", Action: ActionPost}},
	}
}

// Render builds the card for a transition result.
func (r *Renderer) Render(res engine.Result) Card {
	card := Card{
		Title:   title,
		PostURL: r.postURL(),
		State:   EncodeState(res.State),
	}

	switch {
	case res.State.Phase == engine.PhaseStart:
		return r.Start()

	case res.NoCandidate:
		card.Caption = "Nobody showed up this time. Try again?"
		card.Image = profile.SentinelImageURL
		if res.Candidate != nil && res.Candidate.ImageURL != "" {
			card.Image = res.Candidate.ImageURL
		}
		card.Buttons = []Button{{Label: "Try again", Action: ActionPost}}

	case res.State.Phase == engine.PhaseMatched:
		p := candidateOrEmpty(res, res.State.Candidate)
		card.Caption = "Matched! " + strconv.FormatInt(p.FID, 10) + " !"
		card.Image = r.imageOr(p.ImageURL)
		card.Buttons = []Button{
			{Label: "meh", Action: ActionPost},
			{Label: "to Profile", Action: ActionLink, Target: profileURL(p)},
		}

	case res.Candidate == nil:
		card.Caption = "Ready? Let's find someone."
		card.Image = r.startImage
		card.Buttons = []Button{{Label: "Find a match", Action: ActionPost}}

	default:
		p := *res.Candidate
		card.Caption = fmt.Sprintf("you like? %s (%d) ??", p.DisplayName, p.FID)
		card.Image = r.imageOr(p.ImageURL)
		card.Buttons = []Button{
			{Label: "nope", Action: ActionPost},
			{Label: "yay", Action: ActionPost},
		}
	}
	return card
}

func (r *Renderer) imageOr(url string) string {
	if url == "" {
		return r.startImage
	}
	return url
}

func candidateOrEmpty(res engine.Result, fid int64) profile.Profile {
	if res.Candidate != nil {
		return *res.Candidate
	}
	return profile.Profile{FID: fid}
}

func profileURL(p profile.Profile) string {
	if p.Username != "" {
		return "https://warpcast.com/" + p.Username
	}
	return "https://warpcast.com/~/profiles/" + strconv.FormatInt(p.FID, 10)
}
