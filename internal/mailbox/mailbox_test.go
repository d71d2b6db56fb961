package mailbox

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mockMailbox is a mock implementation of Mailbox
type mockMailbox struct {
	ids       []string
	messages  map[string]Message
	searchErr error
	getErr    error
	getCalls  int
}

func newMockMailbox() *mockMailbox {
	return &mockMailbox{messages: make(map[string]Message)}
}

func (m *mockMailbox) Search(ctx context.Context, query string) ([]string, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.ids, nil
}

func (m *mockMailbox) Message(ctx context.Context, id string) (Message, error) {
	m.getCalls++
	if m.getErr != nil {
		return Message{}, m.getErr
	}
	msg, ok := m.messages[id]
	if !ok {
		return Message{}, errors.New("message not found")
	}
	return msg, nil
}

var _ = Describe("FetchAll", func() {
	var (
		mbox     *mockMailbox
		cache    Cache
		messages []Message
		err      error
	)

	BeforeEach(func() {
		mbox = newMockMailbox()
		mbox.ids = []string{"m1", "m2"}
		mbox.messages["m1"] = Message{ID: "m1", Snippet: "a", Raw: "ra"}
		mbox.messages["m2"] = Message{ID: "m2", Snippet: "b", Raw: "rb"}

		var cerr error
		cache, cerr = NewBoltCache(GinkgoT().TempDir() + "/cache.db")
		Expect(cerr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cache.Close()
	})

	JustBeforeEach(func() {
		messages, err = FetchAll(context.Background(), mbox, cache, "from:someone")
	})

	When("nothing is cached", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should fetch every message in search order", func() {
			Expect(messages).To(Equal([]Message{mbox.messages["m1"], mbox.messages["m2"]}))
		})

		It("should store fetched messages in the cache", func() {
			_, found, gerr := cache.Get("m1")
			Expect(gerr).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
		})
	})

	When("a message is already cached", func() {
		BeforeEach(func() {
			Expect(cache.Put(mbox.messages["m1"])).To(Succeed())
		})

		It("should only fetch the missing message", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mbox.getCalls).To(Equal(1))
		})

		It("should still return every message", func() {
			Expect(messages).To(HaveLen(2))
		})
	})

	When("the cache is disabled", func() {
		BeforeEach(func() {
			cache.Close()
			cache = NopCache{}
		})

		It("should fetch every message each time", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mbox.getCalls).To(Equal(2))

			_, ferr := FetchAll(context.Background(), mbox, cache, "from:someone")
			Expect(ferr).NotTo(HaveOccurred())
			Expect(mbox.getCalls).To(Equal(4))
		})
	})

	When("the search fails", func() {
		BeforeEach(func() {
			mbox.searchErr = errors.New("quota exceeded")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("searching mailbox"))
		})
	})

	When("a fetch fails", func() {
		BeforeEach(func() {
			mbox.getErr = errors.New("transient backend error")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("fetching message"))
		})
	})
})
