package portal

// Pages is the single place that knows what the portal's markup looks
// like. The login flow depends on externally-owned, unversioned page
// structure; when the portal drifts, this file changes, not the
// navigation control flow.
type Pages struct {
	// entry point that kicks off the federated login
	LoginEntryURL string
	// hostname of the external identity provider
	IdentityProviderHost string
	// substring of the URL that means "authenticated portal"
	PortalURLMarker string
	// the grades & course registration menu
	MenuURL string

	// optional login affordance on the landing page
	LandingLoginXPath string

	// identity provider form elements
	EmailField      string
	PasswordField   string
	SubmitButton    string
	StaySignedInNo  string

	// grade inquiry link on the menu page, opens a second window
	GradeLinkXPath string
	// marker present on every grade inquiry page
	PageMarker string
	// marker present only once results are listed
	ResultsMarker string
	// the "show results" control on the search/filter page
	DisplayButtonXPath string
}

func DefaultPages() Pages {
	return Pages{
		LoginEntryURL:        "https://my.waseda.jp/login/login",
		IdentityProviderHost: "login.microsoftonline.com",
		PortalURLMarker:      "my.waseda.jp/portal",
		MenuURL:              "https://coursereg.waseda.jp/portal/simpleportal.php?HID_P14=JA",

		LandingLoginXPath: `//a[contains(text(), 'Login') or contains(text(), 'ログイン')]`,

		EmailField:     `input[name="loginfmt"]`,
		PasswordField:  `input[name="passwd"]`,
		SubmitButton:   `#idSIButton9`,
		StaySignedInNo: `#idBtn_Back`,

		GradeLinkXPath:     `//a[contains(., '成績照会')]`,
		PageMarker:         "成績照会",
		ResultsMarker:      "科目名",
		DisplayButtonXPath: `//input[@type='submit' or @value='表示']`,
	}
}
