package derived

// weatherCode implements the WMO weather-code rule table of spec.md
// §6: a fixed rule order, first match wins.
func weatherCode(cloudCover, precip, snowfall, gusts, cape, liftedIndex, visibility, freezingRainFlag, showers float64) int {
	// 1. Freezing rain.
	if freezingRainFlag > 0 {
		if precip >= 1 {
			return 67
		}
		return 66
	}

	// 2. Thunderstorm.
	if cape > 500 && liftedIndex < -4 {
		switch {
		case precip >= 8:
			return 99
		case precip >= 3:
			return 96
		default:
			return 95
		}
	}

	// 3. Snowfall.
	if snowfall > 0 {
		switch {
		case snowfall >= 1.0:
			return 75
		case snowfall >= 0.2:
			return 73
		default:
			return 71
		}
	}

	// 4. Showers (convective precipitation dominant).
	if showers > 0 && showers >= precip*0.5 {
		switch {
		case showers >= 4:
			return 82
		case showers >= 2:
			return 81
		default:
			return 80
		}
	}

	// 5. Rain.
	if precip > 0 {
		switch {
		case precip >= 8:
			return 65
		case precip >= 4:
			return 63
		case precip >= 0.5:
			return 61
		case precip >= 0.25:
			return 55
		case precip >= 0.1:
			return 53
		default:
			return 51
		}
	}

	// 6. Low visibility.
	if visibility < 1000 {
		if visibility < 300 {
			return 48
		}
		return 45
	}

	// 7. Cloud cover.
	switch {
	case cloudCover <= 10:
		return 0
	case cloudCover <= 40:
		return 1
	case cloudCover <= 80:
		return 2
	default:
		return 3
	}
}
