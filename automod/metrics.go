package automod

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_messages_processed",
	Help: "Number of guild messages run through automod rules",
})

var messageProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_message_duration_sec",
	Help: "Total duration of running all rules for one message",
})

var ruleErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_rule_errors",
	Help: "Number of rule evaluations which failed",
}, []string{"rule"})

var ruleTriggerCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_rule_triggers",
	Help: "Number of punishments requested by rules",
}, []string{"rule", "action"})

var stateEvictionCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_state_evictions",
	Help: "Number of per-member rule states dropped by the sweeper",
})

var attachmentDownloadCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_attachment_downloads",
	Help: "Number of attachments downloaded for hashing, by result",
}, []string{"status"})

var attachmentDownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_attachment_download_duration_sec",
	Help: "Duration of attachment download and hash attempts",
})
