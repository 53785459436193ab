package speech

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

type ttsClient interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)
	ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest) (*texttospeechpb.ListVoicesResponse, error)
	Close() error
}

type realTTSClient struct{ c *texttospeech.Client }

func (r realTTSClient) SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	return r.c.SynthesizeSpeech(ctx, req)
}

func (r realTTSClient) ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest) (*texttospeechpb.ListVoicesResponse, error) {
	return r.c.ListVoices(ctx, req)
}

func (r realTTSClient) Close() error { return r.c.Close() }

var newTTSClientHook = func(ctx context.Context, opts ...option.ClientOption) (ttsClient, error) {
	c, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return realTTSClient{c: c}, nil
}
