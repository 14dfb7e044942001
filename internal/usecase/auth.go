package usecase

// Authorizer decides whether a sender may reach the LLM.
type Authorizer interface {
	IsAuthorized(senderID int64) bool
}

// AllowList is a static set of sender ids. An empty list admits everyone.
type AllowList map[int64]struct{}

// NewAllowList builds an AllowList from ids; duplicates collapse.
func NewAllowList(ids ...int64) AllowList {
	l := make(AllowList, len(ids))
	for _, id := range ids {
		l[id] = struct{}{}
	}
	return l
}

func (l AllowList) IsAuthorized(senderID int64) bool {
	if len(l) == 0 {
		return true
	}
	_, ok := l[senderID]
	return ok
}

// Open reports whether the list admits every sender.
func (l AllowList) Open() bool { return len(l) == 0 }
