package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bsolutions/shes/internal/db"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/events"
	"github.com/bsolutions/shes/internal/registry"
	"github.com/bsolutions/shes/internal/repository"
	"github.com/bsolutions/shes/internal/tracing"
	"github.com/bsolutions/shes/internal/tree"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HierarchyState is the lifecycle of the open project.
type HierarchyState int

const (
	StateUnloaded HierarchyState = iota
	StateLoading
	StateReady
)

func (s HierarchyState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("HierarchyState(%d)", int(s))
}

// ErrLoadSuperseded is returned by a Load whose result was discarded
// because a newer Load or a Close started while it was fetching.
var ErrLoadSuperseded = errors.New("load superseded")

// hierarchyView is what readers see. It is replaced wholesale, never
// edited, so one atomic load gives a consistent state, tree and selection.
type hierarchyView struct {
	state     HierarchyState
	projectID string
	tree      *tree.Tree
	selected  string
}

type atomicDelete struct {
	uow      db.UnitOfWork
	itemsFor func(db.DBTX) repository.ProjectItemRepo
}

type hierarchyService struct {
	items        repository.ProjectItemRepo
	registry     *registry.Registry
	materializer *tree.Materializer
	bridge       *events.Bridge
	dispatch     *events.Dispatcher
	observer     UseCaseObserver
	tracer       trace.Tracer
	atomic       *atomicDelete
	now          func() time.Time

	// mu serializes Load bookkeeping and every mutation, including the
	// store round trip. Events are queued under mu and flushed after it is
	// released, in the order the mutations happened.
	mu      sync.Mutex
	view    atomic.Pointer[hierarchyView]
	settled *hierarchyView
	loadGen uint64
}

// HierarchyOption configures a HierarchyService.
type HierarchyOption func(*hierarchyService)

// WithObserver adds use-case observers. Nil observers are ignored.
func WithObserver(observers ...UseCaseObserver) HierarchyOption {
	return func(s *hierarchyService) {
		s.observer = useCaseObserverOrNoop(append([]UseCaseObserver{s.observer}, observers...))
	}
}

// WithTracer records a span per operation. A nil tracer keeps the noop.
func WithTracer(tracer trace.Tracer) HierarchyOption {
	return func(s *hierarchyService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithBridge publishes notifications on an existing bridge instead of a
// private one.
func WithBridge(bridge *events.Bridge) HierarchyOption {
	return func(s *hierarchyService) {
		if bridge != nil {
			s.bridge = bridge
		}
	}
}

// WithAtomicDelete makes DeleteSubtree run all store deletions in one
// transaction, so a failure part way rolls the whole subtree back.
// itemsFor builds the item repo bound to the transaction.
func WithAtomicDelete(uow db.UnitOfWork, itemsFor func(db.DBTX) repository.ProjectItemRepo) HierarchyOption {
	return func(s *hierarchyService) {
		if uow != nil && itemsFor != nil {
			s.atomic = &atomicDelete{uow: uow, itemsFor: itemsFor}
		}
	}
}

// WithClock replaces the source of item timestamps.
func WithClock(now func() time.Time) HierarchyOption {
	return func(s *hierarchyService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewHierarchyService builds an engine over items that validates every
// mutation against reg. The engine starts Unloaded.
func NewHierarchyService(
	items repository.ProjectItemRepo,
	reg *registry.Registry,
	opts ...HierarchyOption,
) HierarchyService {
	s := &hierarchyService{
		items:        items,
		registry:     reg,
		materializer: tree.NewMaterializer(reg),
		bridge:       events.NewBridge(),
		observer:     NoopUseCaseObserver{},
		tracer:       tracing.Noop(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatch = events.NewDispatcher(s.bridge)
	unloaded := &hierarchyView{state: StateUnloaded}
	s.view.Store(unloaded)
	s.settled = unloaded
	return s
}

// track starts a span and returns the function that ends it and reports
// the use case. Fields may be added until the returned function runs.
func (s *hierarchyService) track(ctx context.Context, name string, fields map[string]any) (context.Context, func(err error)) {
	startedAt := s.now()
	ctx, span := s.tracer.Start(ctx, tracing.SpanPrefixEngine+name)
	return ctx, func(err error) {
		span.SetAttributes(spanAttributes(fields)...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  s.now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}
}

var spanKeys = map[string]string{
	"project_id":  tracing.AttrProjectID,
	"item_id":     tracing.AttrItemID,
	"parent_id":   tracing.AttrParentID,
	"item_type":   tracing.AttrItemType,
	"item_count":  tracing.AttrItemCount,
	"delete_mode": tracing.AttrDeleteMode,
}

func spanAttributes(fields map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for k, v := range fields {
		key, ok := spanKeys[k]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case int:
			attrs = append(attrs, attribute.Int(key, val))
		case string:
			attrs = append(attrs, attribute.String(key, val))
		default:
			attrs = append(attrs, attribute.String(key, fmt.Sprint(val)))
		}
	}
	return attrs
}

func (s *hierarchyService) Load(ctx context.Context, projectID string) (err error) {
	fields := map[string]any{"project_id": projectID}
	ctx, done := s.track(ctx, "load", fields)
	defer func() { done(err) }()
	defer s.dispatch.Flush()

	s.mu.Lock()
	prev := s.view.Load()
	if prev.state != StateLoading {
		s.settled = prev
	}
	s.loadGen++
	gen := s.loadGen
	s.view.Store(&hierarchyView{
		state:     StateLoading,
		projectID: prev.projectID,
		tree:      prev.tree,
		selected:  prev.selected,
	})
	s.mu.Unlock()

	items, fetchErr := s.items.GetAll(ctx, projectID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadGen != gen {
		return fmt.Errorf("load project %s: %w", projectID, ErrLoadSuperseded)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.view.Store(s.settled)
		return fmt.Errorf("load project %s: %w", projectID, ctxErr)
	}
	if fetchErr != nil {
		s.settle(&hierarchyView{state: StateUnloaded})
		return &domain.PersistenceError{Op: "load project " + projectID, Err: fetchErr}
	}
	fields["item_count"] = len(items)

	t, buildErr := s.materializer.Build(items)
	if buildErr != nil {
		s.settle(&hierarchyView{state: StateUnloaded})
		return fmt.Errorf("load project %s: %w", projectID, buildErr)
	}
	if t.ProjectID() != projectID {
		s.settle(&hierarchyView{state: StateUnloaded})
		return &domain.IntegrityError{
			Kind:   domain.ErrOrphanReference,
			ItemID: t.Root().ID(),
			Detail: fmt.Sprintf("root belongs to project %s, not %s", t.ProjectID(), projectID),
		}
	}

	s.settle(&hierarchyView{
		state:     StateReady,
		projectID: projectID,
		tree:      t,
		selected:  t.Root().ID(),
	})
	s.dispatch.Enqueue(events.TreeChanged, projectID, t.Root())
	s.dispatch.Enqueue(events.SelectionChanged, projectID, t.Root())
	return nil
}

// settle publishes a non-loading view. Caller holds mu.
func (s *hierarchyService) settle(v *hierarchyView) {
	s.view.Store(v)
	s.settled = v
}

// Close drops the open project. Subscribers get TreeChanged and
// SelectionChanged with a nil node when there was something to drop.
func (s *hierarchyService) Close() {
	defer s.dispatch.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.view.Load()
	s.loadGen++
	s.settle(&hierarchyView{state: StateUnloaded})
	if prev.tree != nil {
		s.dispatch.Enqueue(events.TreeChanged, prev.projectID, nil)
	}
	if prev.selected != "" {
		s.dispatch.Enqueue(events.SelectionChanged, prev.projectID, nil)
	}
}

func (s *hierarchyService) State() HierarchyState {
	return s.view.Load().state
}

func (s *hierarchyService) ProjectID() string {
	return s.view.Load().projectID
}

// Tree returns the visible snapshot. While a Load is in flight this is
// still the previous project's tree.
func (s *hierarchyService) Tree() *tree.Tree {
	return s.view.Load().tree
}

func (s *hierarchyService) Root() *tree.Node {
	if t := s.Tree(); t != nil {
		return t.Root()
	}
	return nil
}

func (s *hierarchyService) Find(id string) *tree.Node {
	if t := s.Tree(); t != nil {
		return t.Find(id)
	}
	return nil
}

// AllowedChildTypesFor returns the types that may be added under node. A
// nil node or an unregistered type yields an empty set.
func (s *hierarchyService) AllowedChildTypesFor(node *tree.Node) []domain.ItemType {
	if node == nil {
		return []domain.ItemType{}
	}
	allowed, err := s.registry.AllowedChildren(node.Type())
	if err != nil {
		return []domain.ItemType{}
	}
	return allowed
}

// readyView returns the current view if mutations are allowed. Caller
// holds mu.
func (s *hierarchyService) readyView() (*hierarchyView, error) {
	v := s.view.Load()
	if v.state != StateReady {
		return nil, fmt.Errorf("%w (state %s)", domain.ErrNotReady, v.state)
	}
	return v, nil
}

// resolve maps a node from any snapshot onto the current one.
func resolve(v *hierarchyView, node *tree.Node) (*tree.Node, error) {
	if node == nil {
		return nil, fmt.Errorf("node is required: %w", domain.ErrNotFound)
	}
	cur := v.tree.Find(node.ID())
	if cur == nil {
		return nil, fmt.Errorf("item %s: %w", node.ID(), domain.ErrNotFound)
	}
	return cur, nil
}

func (s *hierarchyService) AddChild(ctx context.Context, parent *tree.Node, itemType domain.ItemType, name string) (node *tree.Node, err error) {
	fields := map[string]any{"item_type": string(itemType)}
	ctx, done := s.track(ctx, "add_child", fields)
	defer func() { done(err) }()
	defer s.dispatch.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.readyView()
	if err != nil {
		return nil, err
	}
	fields["project_id"] = v.projectID
	p, err := resolve(v, parent)
	if err != nil {
		return nil, err
	}
	fields["parent_id"] = p.ID()

	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if !s.registry.Has(itemType) {
		return nil, domain.NewUnknownType(itemType)
	}
	if !s.registry.IsAssignable(itemType, p.Type()) {
		return nil, domain.NewInvalidChildType(itemType, p.Type())
	}
	if err := s.confirmStored(ctx, p); err != nil {
		return nil, err
	}

	item, err := s.registry.NewItem(itemType, name)
	if err != nil {
		return nil, err
	}
	parentID := p.ID()
	item.ProjectID = p.ProjectID()
	item.ParentID = &parentID
	item.OrderIndex = p.NextChildOrder()
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt

	stored, err := s.items.Add(ctx, item)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "add child of", ItemID: parentID, Err: err}
	}
	fields["item_id"] = stored.ID

	next, node, err := v.tree.WithChild(stored)
	if err != nil {
		return nil, fmt.Errorf("attaching item %s: %w", stored.ID, err)
	}
	s.settle(&hierarchyView{state: StateReady, projectID: v.projectID, tree: next, selected: v.selected})

	s.dispatch.Enqueue(events.TreeChanged, v.projectID, next.Find(parentID))
	if v.selected != "" {
		s.dispatch.Enqueue(events.SelectionChanged, v.projectID, next.Find(v.selected))
	}
	return node, nil
}

func (s *hierarchyService) DeleteSubtree(ctx context.Context, node *tree.Node) (err error) {
	fields := map[string]any{"delete_mode": "sequential"}
	if s.atomic != nil {
		fields["delete_mode"] = "atomic"
	}
	ctx, done := s.track(ctx, "delete_subtree", fields)
	defer func() { done(err) }()
	defer s.dispatch.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.readyView()
	if err != nil {
		return err
	}
	fields["project_id"] = v.projectID
	target, err := resolve(v, node)
	if err != nil {
		return err
	}
	fields["item_id"] = target.ID()
	if target.IsRoot() {
		return fmt.Errorf("item %s: %w", target.ID(), domain.ErrCannotDeleteRoot)
	}

	order := target.PostOrder()
	ids := make([]string, len(order))
	for i, n := range order {
		ids[i] = n.ID()
	}
	fields["item_count"] = len(ids)

	if s.atomic != nil {
		err = s.atomic.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return deleteAll(ctx, s.atomic.itemsFor(tx), ids)
		})
		if f, ok := s.items.(interface{ Forget(ids ...string) }); ok {
			f.Forget(ids...)
		}
	} else {
		err = deleteAll(ctx, s.items, ids)
	}
	if err != nil {
		return err
	}

	next, err := v.tree.WithoutSubtree(target.ID())
	if err != nil {
		return fmt.Errorf("detaching item %s: %w", target.ID(), err)
	}
	parentID := target.Parent().ID()
	selected := v.selected
	selectionMoved := selected != "" && target.Contains(selected)
	if selectionMoved {
		selected = parentID
	}
	s.settle(&hierarchyView{state: StateReady, projectID: v.projectID, tree: next, selected: selected})

	parent := next.Find(parentID)
	s.dispatch.Enqueue(events.TreeChanged, v.projectID, parent)
	if selectionMoved {
		s.dispatch.Enqueue(events.SelectionChanged, v.projectID, parent)
	}
	return nil
}

// confirmStored checks that node's row still exists in the store before
// anything is attached to it. After a Load the lookup is normally served
// by the item cache.
func (s *hierarchyService) confirmStored(ctx context.Context, node *tree.Node) error {
	item, err := s.items.GetByID(ctx, node.ID())
	if err != nil {
		return &domain.PersistenceError{Op: "look up", ItemID: node.ID(), Err: err}
	}
	if item == nil || item.ProjectID != node.ProjectID() {
		return fmt.Errorf("item %s is no longer stored, reload the project: %w", node.ID(), domain.ErrNotFound)
	}
	return nil
}

// deleteAll removes ids in order and stops at the first failure.
func deleteAll(ctx context.Context, items repository.ProjectItemRepo, ids []string) error {
	for _, id := range ids {
		if err := items.Delete(ctx, id); err != nil {
			return &domain.PersistenceError{Op: "delete", ItemID: id, Err: err}
		}
	}
	return nil
}

func (s *hierarchyService) Rename(ctx context.Context, node *tree.Node, name string) (renamed *tree.Node, err error) {
	fields := map[string]any{}
	ctx, done := s.track(ctx, "rename", fields)
	defer func() { done(err) }()
	defer s.dispatch.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.readyView()
	if err != nil {
		return nil, err
	}
	fields["project_id"] = v.projectID
	target, err := resolve(v, node)
	if err != nil {
		return nil, err
	}
	fields["item_id"] = target.ID()
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	item := target.Item()
	item.Name = name
	item.UpdatedAt = s.now()
	if err := s.items.Update(ctx, item); err != nil {
		return nil, &domain.PersistenceError{Op: "rename", ItemID: item.ID, Err: err}
	}

	next, renamed, err := v.tree.WithItem(item)
	if err != nil {
		return nil, err
	}
	s.settle(&hierarchyView{state: StateReady, projectID: v.projectID, tree: next, selected: v.selected})

	s.dispatch.Enqueue(events.TreeChanged, v.projectID, renamed)
	if v.selected == renamed.ID() {
		s.dispatch.Enqueue(events.SelectionChanged, v.projectID, renamed)
	}
	return renamed, nil
}

// Select moves the selection. Nodes that are not part of the current tree
// are ignored; nil clears the selection.
func (s *hierarchyService) Select(node *tree.Node) {
	defer s.dispatch.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view.Load()
	if v.tree == nil || v.state == StateLoading {
		return
	}
	id := ""
	if node != nil {
		if v.tree.Find(node.ID()) == nil {
			return
		}
		id = node.ID()
	}
	s.settle(&hierarchyView{state: v.state, projectID: v.projectID, tree: v.tree, selected: id})
	s.dispatch.Enqueue(events.SelectionChanged, v.projectID, v.tree.Find(id))
}

func (s *hierarchyService) Selection() *tree.Node {
	v := s.view.Load()
	if v.tree == nil || v.selected == "" {
		return nil
	}
	return v.tree.Find(v.selected)
}

// SelectionAllowedChildTypes is AllowedChildTypesFor applied to the
// current selection.
func (s *hierarchyService) SelectionAllowedChildTypes() []domain.ItemType {
	return s.AllowedChildTypesFor(s.Selection())
}

func (s *hierarchyService) Subscribe(sub events.Subscriber) func() {
	return s.bridge.Subscribe(sub)
}
