package provider

import "strings"

// declineMessages maps well-known host response codes to customer-facing
// Turkish decline messages. Codes outside the table fall back to a
// generic message.
var declineMessages = map[string]string{
	"01": "Bankanızı arayınız.",
	"05": "İşlem reddedildi.",
	"12": "Geçersiz işlem.",
	"13": "Geçersiz tutar.",
	"14": "Geçersiz kart numarası.",
	"33": "Kartın son kullanma tarihi geçmiş.",
	"51": "Yetersiz bakiye.",
	"54": "Kartın son kullanma tarihi geçmiş.",
	"57": "Kart sahibine açık olmayan işlem.",
	"62": "Kısıtlanmış kart.",
	"99": "Banka tarafında genel hata.",
}

const genericDeclineMessage = "İşlem bankanız tarafından onaylanmadı."

// DeclineMessage returns the customer-facing message for a host response
// code.
func DeclineMessage(procReturnCode string) string {
	if msg, ok := declineMessages[procReturnCode]; ok {
		return msg
	}
	return genericDeclineMessage
}

// successMDStatuses are the 3D authentication states a gateway treats as
// acceptable: full authentication plus the attempt states that shift
// liability to the issuer.
var successMDStatuses = map[string]bool{
	"1": true,
	"2": true,
	"3": true,
	"4": true,
}

// ClassifyApproval decides the payment outcome of an already verified
// callback. A payment is approved only when the 3D authentication state is
// acceptable and the host approved the authorization. Classification never
// runs on an unverified callback; verification failure is terminal.
func ClassifyApproval(payload CallbackPayload) ApprovalResult {
	mdStatus := payload.Get("mdStatus")
	procReturnCode := payload.Get("ProcReturnCode")
	response := payload.Get("Response")

	if !successMDStatuses[mdStatus] {
		// A mapped host decline code names the reason even when the 3D
		// authentication state already failed the payment.
		if msg, ok := declineMessages[procReturnCode]; ok {
			return ApprovalResult{
				Approved:      false,
				ReasonCode:    procReturnCode,
				ReasonMessage: msg,
			}
		}
		return ApprovalResult{
			Approved:      false,
			ReasonCode:    mdStatus,
			ReasonMessage: "3D Secure doğrulaması başarısız.",
		}
	}

	if procReturnCode == "00" || strings.EqualFold(response, "approved") {
		return ApprovalResult{Approved: true, ReasonCode: procReturnCode}
	}

	return ApprovalResult{
		Approved:      false,
		ReasonCode:    procReturnCode,
		ReasonMessage: DeclineMessage(procReturnCode),
	}
}
