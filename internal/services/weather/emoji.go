package weather

import "strings"

var emojiByKeyword = []struct {
	keywords []string
	emoji    string
}{
	{[]string{"słońce", "pogodnie", "bezchmurnie", "clear", "sun"}, "☀️"},
	{[]string{"chmury", "zachmurzenie", "pochmurno", "cloud"}, "⛅"},
	{[]string{"deszcz", "mżawka", "rain", "drizzle"}, "🌧️"},
	{[]string{"burza", "storm", "thunder"}, "⛈️"},
	{[]string{"śnieg", "snow"}, "❄️"},
	{[]string{"mgła", "fog", "mist", "haze"}, "🌫️"},
}

// Emoji picks an icon for a weather description. It is only shown when the provider doesn't
// send an icon code.
func Emoji(condition string) string {
	condition = strings.ToLower(condition)

	for _, e := range emojiByKeyword {
		for _, kw := range e.keywords {
			if strings.Contains(condition, kw) {
				return e.emoji
			}
		}
	}

	return "🌤️"
}
