package config

type WorkerKeyStruct struct {
	PersistAnswersQueue     string
	PersistFocusEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue:     "persist_answers_queue",
	PersistFocusEventsQueue: "persist_focus_events_queue",
}
