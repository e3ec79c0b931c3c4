package checkout

// Observer is told about every finished checkout, whatever its outcome.
// It runs after all locks are released.
type Observer interface {
	CheckoutFinished(r *Result)
}

type nopObserver struct{}

func (nopObserver) CheckoutFinished(*Result) {}

// Observers fans a result out to several observers in order.
type Observers []Observer

func (os Observers) CheckoutFinished(r *Result) {
	for _, o := range os {
		o.CheckoutFinished(r)
	}
}
