package weather

// Icon names a presentation icon for a condition code.
type Icon string

const (
	IconSun            Icon = "sun"
	IconCloud          Icon = "cloud"
	IconCloudRain      Icon = "cloud-rain"
	IconCloudSnow      Icon = "cloud-snow"
	IconCloudLightning Icon = "cloud-lightning"
)

// conditionIcons lists every WeatherAPI.com condition code.
var conditionIcons = map[int]Icon{
	1000: IconSun,   // sunny / clear
	1003: IconCloud, // partly cloudy
	1006: IconCloud,
	1009: IconCloud,
	1030: IconCloud, // mist
	1063: IconCloudRain,
	1066: IconCloudRain,
	1069: IconCloudRain,
	1072: IconCloud, // patchy freezing drizzle
	1087: IconCloudLightning,
	1114: IconCloudLightning, // blowing snow
	1117: IconCloudLightning, // blizzard
	1135: IconCloud,          // fog
	1147: IconCloud,
	1150: IconCloudRain,
	1153: IconCloudRain,
	1168: IconCloudRain,
	1171: IconCloudRain,
	1180: IconCloudRain,
	1183: IconCloudRain,
	1186: IconCloudRain,
	1189: IconCloudRain,
	1192: IconCloudRain,
	1195: IconCloudRain,
	1198: IconCloudRain,
	1201: IconCloudRain,
	1204: IconCloudRain,
	1207: IconCloudRain,
	1210: IconCloudSnow,
	1213: IconCloudSnow,
	1216: IconCloudSnow,
	1219: IconCloudSnow,
	1222: IconCloudSnow,
	1225: IconCloudSnow,
	1237: IconCloudSnow,
	1240: IconCloudRain,
	1243: IconCloudRain,
	1246: IconCloudRain,
	1249: IconCloudRain,
	1252: IconCloudRain,
	1255: IconCloudSnow,
	1258: IconCloudSnow,
	1261: IconCloudSnow,
	1264: IconCloudSnow,
	1273: IconCloudLightning,
	1276: IconCloudLightning,
	1279: IconCloudLightning,
	1282: IconCloudLightning,
}

// IconFor maps a condition code to its icon. Unknown codes render as a cloud.
func IconFor(code int) Icon {
	if icon, ok := conditionIcons[code]; ok {
		return icon
	}
	return IconCloud
}

// KnownConditionCodes returns the catalogued condition codes.
func KnownConditionCodes() []int {
	codes := make([]int, 0, len(conditionIcons))
	for code := range conditionIcons {
		codes = append(codes, code)
	}
	return codes
}

func withIcon(c Condition) Condition {
	c.Icon = IconFor(c.Code)
	return c
}
