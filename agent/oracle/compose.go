package oracle

import (
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

type composite struct {
	contractx.Classifier
	contractx.Responder
}

// Compose pairs a classifier from one backend with a responder from another.
func Compose(classifier contractx.Classifier, responder contractx.Responder) contractx.Oracle {
	return composite{Classifier: classifier, Responder: responder}
}
