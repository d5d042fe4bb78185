package normalize

import "rugradar/internal/domain"

// MergeSocial merges social metadata from multiple upstream sources in
// priority order: the first nonempty value for each link wins and a
// later, lower-priority source never overwrites it with an empty value.
func MergeSocial(sources ...domain.SocialLinks) domain.SocialLinks {
	var out domain.SocialLinks
	for _, s := range sources {
		out.Website = pick(out.Website, s.Website)
		out.Twitter = pick(out.Twitter, s.Twitter)
		out.Telegram = pick(out.Telegram, s.Telegram)
		out.Discord = pick(out.Discord, s.Discord)
	}
	return out
}

func pick(have, candidate *string) *string {
	if have != nil && *have != "" {
		return have
	}
	if candidate != nil && *candidate != "" {
		return candidate
	}
	return have
}
