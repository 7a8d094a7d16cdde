package question

// Template tables for rendering truth specs as natural-language
// questions. Placeholders are {series}, {date}, {label}, {period},
// {window}; deliberately noisy prefixes and suffixes are mixed in so
// agents see more than one phrasing per spec.

var pointTemplates = []string{
	"What was {series} in {date}?",
	"Give me {series} for {date}.",
	"Report the value of {series} as of {date}.",
	"Can you recap {series} for {date}?",
}

var changeTemplates = []string{
	"What was the {label} for {series} in {date}?",
	"Provide the {label} of {series} for {date}.",
	"How large was the {label} in {date} for {series}?",
	"Quantify the {label} on {date} for {series}.",
}

var maTemplates = []string{
	"What was the {period}-period moving average of {series} in {date}?",
	"Report the {period}-month moving average for {series} as of {date}.",
	"Give me the {period}-period MA for {series} at {date}.",
	"How did the rolling {period}-month average of {series} look in {date}?",
}

var extremeTemplates = []string{
	"What was the {label} value of {series} {window}?",
	"Tell me the {label} reading for {series} {window}.",
	"How {adj} did {series} get {window}?",
	"Pin down the {label} level of {series} {window}.",
}

var yoyLabels = []string{
	"year-over-year change",
	"YoY change",
	"annual change",
	"annual swing",
}

var momLabels = []string{
	"month-over-month change",
	"MoM change",
	"monthly change",
	"month-to-month shift",
}

// extremeLabel pairs a noun label with the adjective used by the
// "How {adj} did ..." template.
type extremeLabel struct {
	label string
	adj   string
}

var maxLabels = []extremeLabel{
	{"highest", "high"},
	{"maximum", "high"},
	{"peak", "high"},
}

var minLabels = []extremeLabel{
	{"lowest", "low"},
	{"minimum", "low"},
	{"trough", "low"},
}

var noisePrefixes = []string{
	"",
	"Quick check:",
	"For audit purposes,",
	"Before we proceed,",
	"Operationally speaking,",
}

var noiseSuffixes = []string{
	"",
	"Keep it numeric.",
	"Answer precisely.",
	"Stick to the factual value.",
}
