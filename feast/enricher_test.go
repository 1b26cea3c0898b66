package feast

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/scholarrec/core"
)

// fakeClient 返回预置的在线特征。
type fakeClient struct {
	resp *GetOnlineFeaturesResponse
	err  error
	got  *GetOnlineFeaturesRequest
}

func (f *fakeClient) GetOnlineFeatures(_ context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestFeatureVector_Strings(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  []string
	}{
		{"string slice", []string{"nlp", "ir"}, []string{"nlp", "ir"}},
		{"scalar string", "nlp", []string{"nlp"}},
		{"interface slice", []interface{}{"nlp", 42, "ir"}, []string{"nlp", "ir"}},
		{"empty string", "", nil},
		{"nil", nil, nil},
		{"unsupported type", 3.14, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FeatureVector{Values: map[string]interface{}{"f": tt.value}}
			got := v.Strings("f")
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterestEnricher_MergesInferredInterests(t *testing.T) {
	client := &fakeClient{resp: &GetOnlineFeaturesResponse{
		FeatureVectors: []FeatureVector{{
			Values: map[string]interface{}{
				FeatureUserInterestTags: []string{"nlp", "graphs", ""},
			},
		}},
	}}
	e := &InterestEnricher{Client: client, Project: "scholarrec"}

	p := &core.UserProfile{UserID: "u1", Interests: []string{"nlp", "ir"}}
	if err := e.Enrich(context.Background(), p); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	want := []string{"nlp", "ir", "graphs"}
	if !reflect.DeepEqual(p.Interests, want) {
		t.Errorf("interests = %v, want %v", p.Interests, want)
	}
	if client.got == nil || client.got.Project != "scholarrec" {
		t.Errorf("request = %+v, want project scholarrec", client.got)
	}
	if len(client.got.EntityRows) != 1 || client.got.EntityRows[0]["user_id"] != "u1" {
		t.Errorf("entity rows = %v", client.got.EntityRows)
	}
}

func TestInterestEnricher_PropagatesClientError(t *testing.T) {
	client := &fakeClient{err: core.NewDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "feast down")}
	e := &InterestEnricher{Client: client}

	p := &core.UserProfile{UserID: "u1", Interests: []string{"nlp"}}
	if err := e.Enrich(context.Background(), p); err == nil {
		t.Fatal("expected error from failing client")
	}
	if !reflect.DeepEqual(p.Interests, []string{"nlp"}) {
		t.Errorf("interests mutated on failure: %v", p.Interests)
	}
}

func TestInterestEnricher_EmptyFeaturesNoop(t *testing.T) {
	client := &fakeClient{resp: &GetOnlineFeaturesResponse{}}
	e := &InterestEnricher{Client: client}

	p := &core.UserProfile{UserID: "u1", Interests: []string{"nlp"}}
	if err := e.Enrich(context.Background(), p); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if !reflect.DeepEqual(p.Interests, []string{"nlp"}) {
		t.Errorf("interests = %v, want unchanged", p.Interests)
	}
}
