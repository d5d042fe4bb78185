package domain

// SocialLinks holds token social presence. Nil means the link is absent
// in every consulted source.
type SocialLinks struct {
	Website  *string
	Twitter  *string
	Telegram *string
	Discord  *string
}

// MissingCore counts how many of {website, twitter, telegram} are absent.
// Discord is informational and does not count toward the red-flag rule.
func (s SocialLinks) MissingCore() int {
	missing := 0
	if s.Website == nil || *s.Website == "" {
		missing++
	}
	if s.Twitter == nil || *s.Twitter == "" {
		missing++
	}
	if s.Telegram == nil || *s.Telegram == "" {
		missing++
	}
	return missing
}
