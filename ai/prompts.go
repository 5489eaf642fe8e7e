package ai

// Framing and section labels of the completion prompt. The separators
// are spliced into the query text as literals; the framing travels as a
// bind parameter.

const systemPrompt = "You are a medical expert. Use the conversation history and retrieved patient records to answer clearly."

const (
	labelHistory  = "Conversation history:"
	labelContext  = "Context:"
	labelQuestion = "Latest Question:"
)

// recordFields are projected from the patient table, in context order.
var recordFields = []string{
	"patient_id",
	"disease_type",
	"disease_stage",
	"visit_date",
	"clinical_summary",
	"assigned_treatment",
	"prognosis_summary",
}

// RetrievalLimit is the number of patient records fed into the context.
const RetrievalLimit = 5
