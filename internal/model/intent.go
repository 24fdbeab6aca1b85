package model

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentValueProp  Intent = "value_prop"
	IntentGreet      Intent = "greet"
	IntentHelp       Intent = "help"
	IntentConfirmYes Intent = "confirm_yes"
	IntentConfirmNo  Intent = "confirm_no"
	IntentContact    Intent = "contact"
	IntentQuote      Intent = "quote"
	IntentPaginate   Intent = "paginate"
	IntentFinance    Intent = "finance"
	IntentKnowledge  Intent = "knowledge"
	IntentSearch     Intent = "search"
)

// AllIntents lists every intent, in classification precedence order.
var AllIntents = []Intent{
	IntentValueProp, IntentGreet, IntentHelp, IntentConfirmYes, IntentConfirmNo,
	IntentContact, IntentQuote, IntentPaginate, IntentFinance, IntentKnowledge,
	IntentSearch,
}
