package utils

import (
	"context"
	"fmt"
	"regexp"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`) // ITU-T E.164

// IsE164 reports basic E.164 compliance.
func IsE164(number string) bool { return e164Regex.MatchString(number) }

// ValidatePhoneNumber validates `number`.
//
//   - If validateWithTwilio == true and a non-nil Twilio RestClient is provided,
//     the function performs a Twilio Lookups V2 fetch (free basic tier).
//   - Otherwise only the E.164 syntax check applies.
func ValidatePhoneNumber(
	ctx context.Context,
	number string,
	country *string,
	validateWithTwilio bool,
	tw *twilio.RestClient,
) (bool, error) {
	if !IsE164(number) {
		return false, nil
	}

	if validateWithTwilio && tw != nil {
		var params *lookupsv2.FetchPhoneNumberParams
		if country != nil && *country != "" {
			params = &lookupsv2.FetchPhoneNumberParams{CountryCode: country}
		}

		_, err := tw.LookupsV2.FetchPhoneNumber(number, params)
		if err == nil {
			return true, nil
		}

		if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
			if restErr.Status == 404 { // unable to find that phone number
				return false, nil
			}
			return false, fmt.Errorf("twilio lookup failed: %d %s",
				restErr.Status, restErr.Error())
		}
		// Context cancel, network failure, etc.
		return false, err
	}

	return true, nil
}
