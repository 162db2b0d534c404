package thread

// State — состояние подсистемы одной сессии:
//
//	INIT -> LOADING -> READY <-> REFRESHING
//	LOADING -> ERROR (до ручного Retry)
//	* -> CLOSED
type State string

const (
	StateInit       State = "init"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateRefreshing State = "refreshing"
	StateError      State = "error"
	StateClosed     State = "closed"
)

// Live — можно ли выполнять мутации и обновления.
func (s State) Live() bool {
	return s == StateReady || s == StateRefreshing
}

// Consistency — порядок применения авторитетных ответов.
type Consistency string

const (
	// ConsistencyVersioned — каждой загрузке и подтверждению назначается возрастающий номер;
	// устаревшие ответы отбрасываются, а загрузка не перетирает реакцию с незавершённым toggle.
	ConsistencyVersioned Consistency = "versioned"
	// ConsistencyArrival — кто пришёл последним, тот и победил.
	ConsistencyArrival Consistency = "arrival"
)

// mutationOp — тип операции в ключе сериализации мутаций.
type mutationOp string

const (
	opSubmit   mutationOp = "submit"
	opReaction mutationOp = "reaction"
	opDelete   mutationOp = "delete"
	opHide     mutationOp = "hide"
	opReport   mutationOp = "report"
)

// mutationKey — не больше одной мутации в полёте на пару (цель, операция).
// Для submit целью служит id родителя ("" — корень).
type mutationKey struct {
	target string
	op     mutationOp
}
