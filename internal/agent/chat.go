package agent

import (
	"context"
	"fmt"
	"math/rand"

	"moneytalk/internal/models"
)

// canned reply pools for the conversational intents. One is picked at
// random so repeated greetings don't feel scripted.
var cannedReplies = map[string][]string{
	models.IntentGreeting: {
		"Chào bạn! Mình là trợ lý tài chính của bạn đây. Hôm nay bạn muốn ghi chép hay xem lại thu chi?",
		"Xin chào! Bạn cần mình giúp gì về chuyện tiền nong không?",
		"Chào bạn nhé! Thu chi hôm nay thế nào rồi?",
	},
	models.IntentFarewell: {
		"Tạm biệt bạn! Nhớ ghi chép thu chi đều đặn nhé.",
		"Hẹn gặp lại! Chúc bạn quản lý tiền thật tốt.",
		"Bye bạn! Có gì cứ nhắn mình bất cứ lúc nào.",
	},
	models.IntentBotIdentity: {
		"Mình là trợ lý tài chính cá nhân, giúp bạn ghi chép thu chi, theo dõi khoản vay và phân tích chi tiêu bằng tiếng Việt.",
		"Mình là chatbot quản lý tài chính của bạn. Bạn cứ nhắn tự nhiên như \"ăn sáng hết 30k\" là mình hiểu.",
	},
	models.IntentAuth: {
		"Bạn không cần đăng nhập gì thêm với mình đâu, tài khoản của bạn đã được hệ thống xác thực rồi.",
	},
	models.IntentSecurity: {
		"Dữ liệu thu chi của bạn được lưu riêng theo tài khoản và không chia sẻ cho ai khác. Mình chỉ đọc dữ liệu của chính bạn thôi.",
	},
	models.IntentFunny: {
		"Ví tiền cũng như lọ muối, vơi lúc nào không hay. May là có mình đếm hộ bạn!",
		"Tiền không mua được hạnh phúc, nhưng ghi chép lại giúp nó đi chậm hơn đó.",
	},
}

func (a *Agent) handleChitChat(_ context.Context, _, message string) *Response {
	return a.cannedResponse(chitChatIntent(message))
}

func (a *Agent) cannedResponse(intent string) *Response {
	if intent == models.IntentTimeOfDay {
		return a.timeOfDayResponse()
	}

	pool := cannedReplies[intent]
	if len(pool) == 0 {
		return &Response{
			Message: "Mình nghe bạn nè. Bạn muốn hỏi gì về thu chi của mình không?",
			Intent:  models.IntentUnknown,
		}
	}
	return &Response{Message: pool[rand.Intn(len(pool))], Intent: intent}
}

// timeOfDayResponse is the one conversational intent with a dynamic
// answer.
func (a *Agent) timeOfDayResponse() *Response {
	now := a.now()

	var partOfDay string
	switch hour := now.Hour(); {
	case hour < 5:
		partOfDay = "Khuya rồi, bạn nghỉ sớm nhé!"
	case hour < 11:
		partOfDay = "Chúc bạn buổi sáng tốt lành!"
	case hour < 14:
		partOfDay = "Buổi trưa vui vẻ nha!"
	case hour < 18:
		partOfDay = "Chúc bạn buổi chiều năng suất!"
	default:
		partOfDay = "Buổi tối thư giãn nhé!"
	}

	return &Response{
		Message: fmt.Sprintf("Bây giờ là %s ngày %s. %s", now.Format("15:04"), now.Format("02/01/2006"), partOfDay),
		Intent:  models.IntentTimeOfDay,
	}
}
