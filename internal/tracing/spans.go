package tracing

// Span attribute keys for hierarchy engine spans.
const (
	AttrProjectID  = "shes.project.id"
	AttrItemID     = "shes.item.id"
	AttrParentID   = "shes.item.parent_id"
	AttrItemType   = "shes.item.type"
	AttrItemCount  = "shes.item.count"
	AttrDeleteMode = "shes.delete.mode"
)

// SpanPrefixEngine prefixes every span the hierarchy engine starts.
const SpanPrefixEngine = "hierarchy."
